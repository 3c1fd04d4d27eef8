package commands

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"reservesweep/lib/auditlog"
	"reservesweep/lib/restyutil"
	"reservesweep/lib/scrapers/tiny/api"
	"reservesweep/lib/scrapers/tiny/core"
	"reservesweep/lib/scrapers/tiny/ledger"
	"reservesweep/lib/serviceutil"
	"reservesweep/lib/tokendb"
	"reservesweep/services/cleanup"
)

var (
	runConfig     *string
	runFiles      *string
	runCheckpoint *string
	runAuditLog   *string
	runHeadless   *bool
	runSettle     *time.Duration
	runNavTimeout *time.Duration
	runDebugHttp  *bool
)

func init() {
	runConfig = runCmd.Flags().String("config", "credentials.json5", "The configuration file to use.")
	runFiles = runCmd.Flags().String("files", "files", "The directory holding the reserved-stock spreadsheet export.")
	runCheckpoint = runCmd.Flags().String("checkpoint", "processados.txt", "The checkpoint log tracking finished SKUs.")
	runAuditLog = runCmd.Flags().String("audit-log", "logs.txt", "The file product lookup results are appended to.")
	runHeadless = runCmd.Flags().Bool("headless", true, "Run the browser without a visible window.")
	runSettle = runCmd.Flags().Duration("settle", 0, "Override the pause after navigations and tab switches.")
	runNavTimeout = runCmd.Flags().Duration("nav-timeout", 0, "Override the wait after a page jump.")
	runDebugHttp = runCmd.Flags().Bool("debug-http", false, "Dump API requests and responses to .dev/resty/api.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--files <dir>] [--checkpoint <path>]",
	Short: "Sweeps expired reservations for every pending SKU in the spreadsheet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg := mustLoadConfig(*runConfig)
		items, store := mustLoadQueue(*runFiles, *runCheckpoint)
		if len(items) == 0 {
			slog.Info("every SKU in the spreadsheet is already processed")
			return
		}
		slog.Info("work queue assembled", "pending", len(items))

		tokens, err := tokendb.Open(cfg.Db)
		if err != nil {
			serviceutil.Fatal("failed to open the token database", err)
		}
		defer tokens.Close()

		client, err := api.NewClient(api.ClientOptions{
			BaseUrl: cfg.ApiBaseUrl,
			Tokens:  tokens,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize the ERP API client", err)
		}
		if *runDebugHttp {
			client.SetInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/api"))
		}

		timing := core.DefaultTiming()
		if *runSettle > 0 {
			timing.Settle = *runSettle
		}
		if *runNavTimeout > 0 {
			timing.NavTimeout = *runNavTimeout
		}

		session, err := core.NewSession(ctx, core.SessionOptions{
			Headless: *runHeadless,
			Timing:   timing,
		})
		if err != nil {
			serviceutil.Fatal("failed to start the browser", err)
		}
		defer session.Close()

		if err := session.Login(ctx, cfg.Tiny.User, cfg.Tiny.Password); err != nil {
			serviceutil.Fatal("failed to login to the ERP", err)
		}

		svc := &cleanup.Service{
			Resolver:    client,
			Browser:     session,
			View:        session,
			Nav:         session,
			Surface:     session,
			Checkpoints: store,
			Audit:       auditlog.New(*runAuditLog),
			Cutoff: ledger.Cutoff{
				Day:   cfg.Tiny.DateDay,
				Month: cfg.Tiny.DateMonth,
				Year:  cfg.Tiny.DateYear,
			},
		}

		t1 := time.Now()
		if err := svc.Run(ctx, items); err != nil {
			serviceutil.Fatal("sweep aborted", err)
		}
		slog.Info("sweep finished",
			"skus", len(items), "seconds", time.Since(t1).Seconds())
	},
}
