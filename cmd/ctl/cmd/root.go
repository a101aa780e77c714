package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"policymatcher/internal/config"
	"policymatcher/internal/log"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "policymatcher-ctl",
	Short: "Operator tooling for policymatcher",
	Long: `Maintenance commands for the policymatcher database: schema migrations,
the program integrity sweep, admin bootstrap and nickname generation.

Configuration is read the same way as the api and worker binaries
(.env, config.yaml, POLICYMATCHER_* environment variables).`,
	PersistentPreRun: func(*cobra.Command, []string) {
		if noColor {
			color.NoColor = true
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}

// setup loads configuration for commands that talk to the database. Logs go
// to stderr so stdout stays readable.
func setup() (*config.AppConfig, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := log.NewWithWriter(os.Stderr, cfg.Environment, cfg.Logging.Level)
	return cfg, logger, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(bootstrapAdminCmd)
	rootCmd.AddCommand(nicknameCmd)
}
