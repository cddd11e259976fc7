package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Job is a canonical job listing, normalized from whatever shape its source
// adapter produced. Uniqueness is on lower(Link).
type Job struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title" validate:"required"`
	Description string    `db:"description"`
	Link        string    `db:"link" validate:"required,url"`
	MinSalary   *Money    `db:"-"`
	MaxSalary   *Money    `db:"-"`
	PostedOn    time.Time `db:"posted_on"`
	IsActive    bool      `db:"is_active"`
	IsRemote    bool      `db:"is_remote"`
	Locations   []string  `db:"locations" validate:"dive,min=2,max=6"`
	CompanyName string    `db:"company_name"`
	Tags        []string  `db:"-"`
	CreatedAt   time.Time `db:"created_at"`
	EditedAt    time.Time `db:"edited_at"`

	// Source is the registry key of the adapter that produced this job, set
	// by the fetch orchestrator. Never persisted; portal_name is derived from
	// Link at query time (see PortalName), not from this field.
	Source string `db:"-"`
}

// Money is a decimal amount paired with its ISO currency code. Amounts use
// decimal.Decimal (not float64) to avoid drift across the currency
// conversion in internal/currency; every Money attached to a Job is always
// denominated in the configured default currency before the job is
// persisted.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

var (
	errSalaryRangeInverted = errors.New("max salary is less than min salary")
	errNegativeSalary      = errors.New("salary amount is negative")
)

// ValidateSalaryRange enforces the invariants the store schema also carries:
// both bounds must be non-negative, and when both are present max must be
// >= min.
func (j *Job) ValidateSalaryRange() error {
	if j.MinSalary != nil && j.MinSalary.Amount.IsNegative() {
		return errNegativeSalary
	}
	if j.MaxSalary != nil && j.MaxSalary.Amount.IsNegative() {
		return errNegativeSalary
	}
	if j.MinSalary == nil || j.MaxSalary == nil {
		return nil
	}
	if j.MaxSalary.Amount.LessThan(j.MinSalary.Amount) {
		return errSalaryRangeInverted
	}
	return nil
}

// PortalName derives the display name of the source a job came from, based
// on which registered source's base URL prefixes the job's link. Returns ""
// if no registered source matches.
func PortalName(link string, baseURLsByName map[string]string) string {
	for name, base := range baseURLsByName {
		if len(link) >= len(base) && link[:len(base)] == base {
			return name
		}
	}
	return ""
}
