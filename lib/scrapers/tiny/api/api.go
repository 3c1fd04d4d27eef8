// Package api talks to the Tiny ERP public REST API. Only the product
// search endpoint is used: it maps a SKU to the internal product id that
// the web UI's stock ledger is keyed by.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"reservesweep/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/tiny/api")

const DefaultBaseUrl = "https://api.tiny.com.br/public-api/v3"

// TokenProvider hands out the current bearer token. Implemented by
// tokendb; the token is fetched per request because an external job
// rotates it.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

type Client struct {
	Http   *resty.Client
	tokens TokenProvider
}

type ClientOptions struct {
	// BaseUrl defaults to the public Tiny API v3 endpoint.
	BaseUrl string
	Tokens  TokenProvider
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("api: a token provider is required")
	}

	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 30)
	restyutil.InstrumentClient(client, tracer, nil)

	return &Client{
		Http:   client,
		tokens: opts.Tokens,
	}, nil
}

func (c *Client) SetInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.Http, tracer, output)
}

type Product struct {
	Id  int64  `json:"id"`
	Sku string `json:"sku"`
}

// SearchResult is the parsed body of a product search, kept whole so the
// caller can audit-log exactly what the API answered.
type SearchResult struct {
	Itens []Product `json:"itens"`
}

// First returns the matching product, if the search found one.
func (r SearchResult) First() (Product, bool) {
	if len(r.Itens) == 0 {
		return Product{}, false
	}
	return r.Itens[0], true
}

// SearchProduct looks a SKU up among active products. An empty or
// malformed response body is not an error: it means the SKU is unknown
// to the ERP and the caller should move on. Only transport and token
// failures surface as errors.
func (c *Client) SearchProduct(ctx context.Context, sku string) (SearchResult, error) {
	ctx, span := tracer.Start(ctx, "SearchProduct")
	defer span.End()

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch access token")
		return SearchResult{}, err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"codigo":   sku,
			"situacao": "A",
		}).
		SetAuthToken(token).
		Get("/produtos")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make search request")
		return SearchResult{}, err
	}

	var result SearchResult
	err = json.Unmarshal(res.Body(), &result)
	if err != nil {
		slog.WarnContext(ctx, "unparsable product search response",
			"sku", sku, "status", res.StatusCode(), "err", err)
		return SearchResult{}, nil
	}
	if res.IsError() {
		slog.WarnContext(ctx, "product search returned an error status",
			"sku", sku, "status", res.StatusCode())
		return SearchResult{}, nil
	}

	return result, nil
}
