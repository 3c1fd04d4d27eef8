package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"reservesweep/cmd/reservesweep/commands"
	"reservesweep/lib/serviceutil"
	"reservesweep/lib/telemetry"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}

	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "reservesweep")
	if err == nil {
		defer t.Shutdown(ctx)
	} else if !os.IsNotExist(err) {
		slog.Warn("failed to set up telemetry", "err", err)
	}

	commands.ExecuteContext(ctx)
}
