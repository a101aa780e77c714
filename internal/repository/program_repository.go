package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"policymatcher/internal/database"
	"policymatcher/internal/errs"
	"policymatcher/internal/models"
)

const programColumns = `id, title, description, category, support_type, agency, deadline, period, link, created_at, updated_at`

// searchPredicate matches the keyword against title, description and a text
// projection of the structured columns.
const searchPredicate = `
	title ILIKE $1 ESCAPE '\'
	OR description ILIKE $1 ESCAPE '\'
	OR concat_ws(' ', category, support_type, agency, period) ILIKE $1 ESCAPE '\'`

type ProgramRepository struct {
	pool database.Pool
}

func NewProgramRepository(pool database.Pool) *ProgramRepository {
	return &ProgramRepository{pool: pool}
}

// List returns one page ordered newest first and the total number of matching
// rows. A non-empty keyword turns the listing into a search.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	var (
		listQuery  string
		countQuery string
		args       []any
	)

	keyword := strings.TrimSpace(filter.Keyword)
	if keyword == "" {
		listQuery = `SELECT ` + programColumns + ` FROM programs ORDER BY id DESC LIMIT $1 OFFSET $2`
		countQuery = `SELECT COUNT(*) FROM programs`
	} else {
		listQuery = `SELECT ` + programColumns + ` FROM programs WHERE` + searchPredicate + ` ORDER BY id DESC LIMIT $2 OFFSET $3`
		countQuery = `SELECT COUNT(*) FROM programs WHERE` + searchPredicate
		args = append(args, likePattern(keyword))
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count programs: %w", err)
	}

	rows, err := r.pool.Query(ctx, listQuery, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}
	programs, err := collectPrograms(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list programs: %w", err)
	}
	return programs, total, nil
}

// ListAll returns every program ordered by id, for batch scans.
func (r *ProgramRepository) ListAll(ctx context.Context) ([]models.Program, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+programColumns+` FROM programs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all programs: %w", err)
	}
	programs, err := collectPrograms(rows)
	if err != nil {
		return nil, fmt.Errorf("list all programs: %w", err)
	}
	return programs, nil
}

func (r *ProgramRepository) Get(ctx context.Context, id int64) (models.Program, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id)
	program, err := scanProgram(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Program{}, errs.ErrNotFound
		}
		return models.Program{}, fmt.Errorf("get program %d: %w", id, err)
	}
	return program, nil
}

func (r *ProgramRepository) Create(ctx context.Context, f models.ProgramFields) (int64, error) {
	const query = `
		INSERT INTO programs (
			title, description, category, support_type, agency, deadline, period, link, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
		RETURNING id
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query,
		f.Title,
		f.Description,
		f.Category,
		f.SupportType,
		f.Agency,
		f.Deadline,
		f.Period,
		f.Link,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("create program: %w", err)
	}
	return id, nil
}

// Update replaces every editable column. A missing row is ErrNotFound.
func (r *ProgramRepository) Update(ctx context.Context, id int64, f models.ProgramFields) error {
	const query = `
		UPDATE programs SET
			title = $2,
			description = $3,
			category = $4,
			support_type = $5,
			agency = $6,
			deadline = $7,
			period = $8,
			link = $9,
			updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		id,
		f.Title,
		f.Description,
		f.Category,
		f.SupportType,
		f.Agency,
		f.Deadline,
		f.Period,
		f.Link,
	)
	if err != nil {
		return fmt.Errorf("update program %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *ProgramRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM programs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return count, nil
}

// CountByCategory groups programs by category; blank categories are reported
// under "기타".
func (r *ProgramRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `
		SELECT COALESCE(NULLIF(btrim(category), ''), '기타') AS category, COUNT(*)
		FROM programs
		GROUP BY 1
		ORDER BY 2 DESC, 1
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("count by category: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ApplyRepairs writes all repairs in one transaction.
func (r *ProgramRepository) ApplyRepairs(ctx context.Context, repairs []models.ProgramRepair) error {
	if len(repairs) == 0 {
		return nil
	}

	const query = `
		UPDATE programs
		SET title = $2, description = $3, category = $4, period = $5, updated_at = NOW()
		WHERE id = $1
	`

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, rep := range repairs {
			if _, err := tx.Exec(ctx, query, rep.ID, rep.Title, rep.Description, rep.Category, rep.Period); err != nil {
				return fmt.Errorf("repair program %d: %w", rep.ID, err)
			}
		}
		return nil
	})
}

func collectPrograms(rows pgx.Rows) ([]models.Program, error) {
	defer rows.Close()

	programs := make([]models.Program, 0)
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

func scanProgram(row pgx.Row) (models.Program, error) {
	var p models.Program
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Category,
		&p.SupportType,
		&p.Agency,
		&p.Deadline,
		&p.Period,
		&p.Link,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
