package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"policymatcher/internal/database"
	"policymatcher/internal/integrity"
	"policymatcher/internal/repository"
	"policymatcher/internal/storage"
)

var dryRun bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Find and rewrite programs whose text is unreadable",
	Long: `Scans every program and rewrites those whose title, description or
category contains no Hangul, Latin letter or digit. All rewrites happen in one
transaction. The report is archived to object storage when it is configured.

Use --dry-run to see what would change without writing anything.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		var archiver integrity.ReportArchiver
		store, err := storage.OpenReports(ctx, cfg.Storage)
		if err != nil {
			logger.Warn().Err(err).Msg("object storage unavailable, report will not be archived")
		} else if store != nil {
			archiver = store
		}

		sweeper := integrity.NewSweeper(repository.NewProgramRepository(pool), archiver, logger)
		report, err := sweeper.Run(ctx, dryRun)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func printReport(out io.Writer, report integrity.Report) {
	if len(report.Findings) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREASON\tOLD TITLE\tNEW TITLE")
		for _, f := range report.Findings {
			fmt.Fprintf(w, "%d\t%s\t%q\t%s\n", f.ProgramID, f.Reason, f.OldTitle, f.NewTitle)
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	broken := len(report.Findings)
	summary := fmt.Sprintf("scanned %d, broken %d, repaired %d", report.Scanned, broken, report.Repaired)
	switch {
	case broken == 0:
		fmt.Fprintln(out, color.GreenString(summary))
	case report.DryRun:
		fmt.Fprintln(out, color.YellowString(summary+" (dry run, nothing written)"))
	default:
		fmt.Fprintln(out, color.CyanString(summary))
	}

	if report.ArchiveKey != "" {
		fmt.Fprintf(out, "report archived as %s\n", report.ArchiveKey)
	}
}

func init() {
	repairCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report broken programs without rewriting them")
}
