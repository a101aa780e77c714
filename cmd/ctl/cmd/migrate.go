package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"policymatcher/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		if err := database.Migrate(cmd.Context(), cfg.Postgres.PostgresDSN()); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("database is up to date"))
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations have been applied",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		statuses, err := database.MigrationStatus(cmd.Context(), cfg.Postgres.PostgresDSN())
		if err != nil {
			return err
		}
		printMigrationStatus(cmd.OutOrStdout(), statuses)
		return nil
	},
}

func printMigrationStatus(out io.Writer, statuses []*goose.MigrationStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFILE\tSTATE\tAPPLIED AT")
	for _, st := range statuses {
		state := color.YellowString("pending")
		applied := "-"
		if st.State == goose.StateApplied {
			state = color.GreenString("applied")
			applied = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, filepath.Base(st.Source.Path), state, applied)
	}
	w.Flush()
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}
