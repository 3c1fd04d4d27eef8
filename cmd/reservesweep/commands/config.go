package commands

import (
	"fmt"
	"os"
	"time"

	"reservesweep/lib/checkpoint"
	"reservesweep/lib/configutil"
	"reservesweep/lib/inventory"
	"reservesweep/lib/serviceutil"
	"reservesweep/lib/tokendb"
)

type TinyConfig struct {
	User     string `json:"user"`
	Password string `json:"password"`
	DateDay  int    `json:"date_day"`
	// historical key, kept for compatibility with existing config files
	DateMonth int `json:"date_mounth"`
	DateYear  int `json:"date_year"`
}

type Config struct {
	Db         tokendb.Config `json:"db"`
	Tiny       TinyConfig     `json:"tiny"`
	ApiBaseUrl string         `json:"api_base_url"`
}

func (c Config) validate() error {
	if c.Tiny.User == "" || c.Tiny.Password == "" {
		return fmt.Errorf("ERP credentials are missing, set tiny.user/tiny.password in the config or TINY_USERNAME/TINY_PASSWORD in the environment")
	}

	t := c.Tiny
	if t.DateYear < 2000 {
		return fmt.Errorf("cutoff year %d is not plausible", t.DateYear)
	}
	normalized := time.Date(t.DateYear, time.Month(t.DateMonth), t.DateDay, 0, 0, 0, 0, time.Local)
	if normalized.Day() != t.DateDay ||
		int(normalized.Month()) != t.DateMonth ||
		normalized.Year() != t.DateYear {
		return fmt.Errorf("cutoff %02d/%02d/%d is not a valid calendar date", t.DateDay, t.DateMonth, t.DateYear)
	}

	if c.Db.Host == "" || c.Db.Database == "" || c.Db.Table == "" {
		return fmt.Errorf("token database configuration is incomplete")
	}
	return nil
}

func mustLoadConfig(name string) Config {
	cfg, err := configutil.ReadConfig[Config](name)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	if username := os.Getenv("TINY_USERNAME"); username != "" {
		cfg.Tiny.User = username
	}
	if password := os.Getenv("TINY_PASSWORD"); password != "" {
		cfg.Tiny.Password = password
	}

	if err := cfg.validate(); err != nil {
		serviceutil.Fatal("invalid config", err)
	}
	return cfg
}

// mustLoadQueue derives the pending work queue from the spreadsheet
// export and the checkpoint log.
func mustLoadQueue(filesDir, checkpointPath string) ([]inventory.Item, checkpoint.Store) {
	workbook, err := inventory.FindWorkbook(filesDir)
	if err != nil {
		serviceutil.Fatal("failed to locate the spreadsheet export", err)
	}
	items, err := inventory.LoadWorkbook(workbook)
	if err != nil {
		serviceutil.Fatal("failed to read the spreadsheet export", err)
	}

	store := checkpoint.NewStore(checkpointPath)
	completed, err := store.Load()
	if err != nil {
		serviceutil.Fatal("failed to read the checkpoint log", err)
	}

	return inventory.SelectPending(items, completed), store
}
