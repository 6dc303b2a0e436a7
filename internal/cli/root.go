package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/suiwork/internal/control"
	"github.com/vietddude/suiwork/internal/core/config"
	"github.com/vietddude/suiwork/internal/core/neterr"
)

var (
	cfgPath string
	isDebug bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "suiwork",
	Short: "Freelance marketplace client with Sui escrow",
	Long: `suiwork submits escrow transactions to Sui through a connected wallet,
retrying transient failures and pausing while the network is offline.`,
	PersistentPreRun: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
}

// startApp builds and mounts the client for one-shot commands.
func startApp(ctx context.Context) *control.App {
	app, err := control.NewApp(ctx, *cfg)
	if err != nil {
		slog.Error("Failed to initialize client", "error", err)
		os.Exit(1)
	}
	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start client", "error", err)
		os.Exit(1)
	}
	return app
}

// connectedApp mounts the client and binds a wallet if none was restored.
func connectedApp(ctx context.Context) *control.App {
	app := startApp(ctx)
	if app.Wallet().Session().Connected {
		return app
	}
	if _, err := app.Wallet().Connect(ctx); err != nil {
		fail(app, "Failed to connect wallet", err)
	}
	return app
}

func stopApp(app *control.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		slog.Warn("Error during shutdown", "error", err)
	}
}

// fail logs err with its user-facing message and exits.
func fail(app *control.App, msg string, err error) {
	if app != nil {
		stopApp(app)
	}
	slog.Error(msg,
		"category", neterr.CategoryOf(err).String(),
		"reason", failureReason(err),
		"error", err)
	os.Exit(1)
}

// failureReason describes err for the user. Classified errors carry the
// message chosen when they failed; anything else, such as parameter
// validation, keeps its own text.
func failureReason(err error) string {
	var ce *neterr.ClassifiedError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	if err == nil {
		return neterr.UserMessage(nil, neterr.Unknown)
	}
	return err.Error()
}
