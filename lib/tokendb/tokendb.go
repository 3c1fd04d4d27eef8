// Package tokendb fetches the ERP API bearer token out of a relational
// database row maintained by a separate token-refresh job.
package tokendb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	Table    string `json:"table"`
	IdRow    int    `json:"id_row"`
}

// Provider reads the access token on demand; the row is refreshed by an
// external process so the token is never cached here.
type Provider struct {
	db    *sqlx.DB
	table string
	idRow int
}

// Open connects to the configured Postgres database.
func Open(cfg Config) (*Provider, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
	)
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return NewProvider(db, cfg.Table, cfg.IdRow), nil
}

// NewProvider wraps an already-open database handle. Tests use this with
// an in-memory sqlite database.
func NewProvider(db *sqlx.DB, table string, idRow int) *Provider {
	return &Provider{db: db, table: table, idRow: idRow}
}

func (p *Provider) Close() error {
	return p.db.Close()
}

// AccessToken fetches the current bearer token.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	query := fmt.Sprintf(
		"SELECT access_token FROM %s WHERE id = $1 LIMIT 1",
		p.table,
	)

	var token string
	err := p.db.GetContext(ctx, &token, query, p.idRow)
	if err != nil {
		return "", fmt.Errorf("fetch access token (id=%d): %w", p.idRow, err)
	}
	return token, nil
}
