package models

import (
	"math"
	"time"
)

// Program is one government support program entry.
type Program struct {
	ID          int64
	Title       string
	Description string
	Category    string
	SupportType string
	Agency      string
	Deadline    *time.Time
	Period      string
	Link        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProgramFields is the editable, allow-listed subset of a Program. Create and
// update accept nothing else.
type ProgramFields struct {
	Title       string
	Description string
	Category    string
	SupportType string
	Agency      string
	Deadline    *time.Time
	Period      string
	Link        string
}

type ProgramFilter struct {
	Page     int
	PageSize int
	Keyword  string
}

// Offset saturates at math.MaxInt instead of overflowing, so an absurd page
// number reads past the end and comes back empty.
func (f ProgramFilter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

type CategoryCount struct {
	Category string
	Count    int
}

// ProgramRepair rewrites the text columns touched by the integrity sweep.
type ProgramRepair struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Period      string
}
