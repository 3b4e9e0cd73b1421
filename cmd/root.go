package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/validator-cli/internal/app"
	"github.com/sells-group/validator-cli/internal/auth"
	"github.com/sells-group/validator-cli/internal/config"
	"github.com/sells-group/validator-cli/pkg/valapi"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "validator-cli",
	Short: "Provider-data validation workstation",
	Long:  "Claims healthcare-provider records from the validation backend, verifies their addresses and phone numbers, logs call attempts, and completes sessions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newApp wires the backend client, token store, and application state from
// the loaded config. One-shot commands disable auto-save; serve enables it.
func newApp(autosave bool) *app.App {
	tokens := auth.NewTokenStore(cfg.Auth.TokenPath)
	client := valapi.NewClient(
		valapi.WithBaseURL(cfg.API.BaseURL),
		valapi.WithTimeout(time.Duration(cfg.API.TimeoutSecs)*time.Second),
		valapi.WithRateLimit(cfg.API.RatePerSecond, cfg.API.RateBurst),
		valapi.WithTokenSource(tokens),
	)

	opts := app.Options{}
	if autosave {
		opts.AutosaveDelay = time.Duration(cfg.Autosave.DelaySecs) * time.Second
	}
	return app.New(client, tokens, opts)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
