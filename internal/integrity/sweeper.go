package integrity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"policymatcher/internal/models"
)

type ProgramStore interface {
	ListAll(ctx context.Context) ([]models.Program, error)
	ApplyRepairs(ctx context.Context, repairs []models.ProgramRepair) error
}

// ReportArchiver keeps a copy of each sweep report. It is optional.
type ReportArchiver interface {
	PutReport(ctx context.Context, key string, body []byte) error
}

type Finding struct {
	ProgramID int64  `json:"programId"`
	Reason    string `json:"reason"`
	OldTitle  string `json:"oldTitle"`
	NewTitle  string `json:"newTitle"`
}

type Report struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	DryRun     bool      `json:"dryRun"`
	Scanned    int       `json:"scanned"`
	Repaired   int       `json:"repaired"`
	Findings   []Finding `json:"findings"`
	ArchiveKey string    `json:"-"`
}

type Sweeper struct {
	store    ProgramStore
	archiver ReportArchiver
	log      zerolog.Logger
	now      func() time.Time
}

func NewSweeper(store ProgramStore, archiver ReportArchiver, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		archiver: archiver,
		log:      log,
		now:      time.Now,
	}
}

// Run scans every program and rewrites the broken ones in a single
// transaction. With dryRun nothing is written to the database, but the report
// is still produced and archived.
func (s *Sweeper) Run(ctx context.Context, dryRun bool) (Report, error) {
	report := Report{StartedAt: s.now().UTC(), DryRun: dryRun, Findings: []Finding{}}

	programs, err := s.store.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("integrity scan: %w", err)
	}
	report.Scanned = len(programs)

	var repairs []models.ProgramRepair
	for _, p := range programs {
		broken, reason := Classify(p)
		if !broken {
			continue
		}
		rep := Repair(p)
		repairs = append(repairs, rep)
		report.Findings = append(report.Findings, Finding{
			ProgramID: p.ID,
			Reason:    reason,
			OldTitle:  p.Title,
			NewTitle:  rep.Title,
		})
		s.log.Warn().Int64("program_id", p.ID).Str("reason", reason).Msg("broken program text")
	}

	if !dryRun && len(repairs) > 0 {
		if err := s.store.ApplyRepairs(ctx, repairs); err != nil {
			return report, fmt.Errorf("integrity repair: %w", err)
		}
		report.Repaired = len(repairs)
	}
	report.FinishedAt = s.now().UTC()

	if s.archiver != nil {
		key, err := s.archive(ctx, report)
		if err != nil {
			s.log.Error().Err(err).Msg("archive integrity report failed")
		} else {
			report.ArchiveKey = key
		}
	}

	s.log.Info().
		Int("scanned", report.Scanned).
		Int("broken", len(report.Findings)).
		Int("repaired", report.Repaired).
		Bool("dry_run", dryRun).
		Msg("integrity sweep finished")

	return report, nil
}

func (s *Sweeper) archive(ctx context.Context, report Report) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	key := fmt.Sprintf("integrity/%s.json", report.StartedAt.Format("20060102T150405Z"))
	if err := s.archiver.PutReport(ctx, key, body); err != nil {
		return "", err
	}
	return key, nil
}
