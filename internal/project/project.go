// Package project defines the input records for timeline projects.
package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// Record is one project as it appears in a timeline document.
type Record struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	StartDate   string   `json:"startDate" yaml:"startDate" validate:"required"`
	EndDate     string   `json:"endDate,omitempty" yaml:"endDate,omitempty"` // empty means ongoing
	Duration    Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Phase       int      `json:"phase,omitempty" yaml:"phase,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Skills      []string `json:"skills,omitempty" yaml:"skills,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID        = errors.New("id is required")
	ErrEmptyName      = errors.New("name is required")
	ErrEmptyStartDate = errors.New("startDate is required")
	ErrInvalidDate    = errors.New("date must use the YYYY-MM-DD format")
	ErrDuplicateID    = errors.New("project with this id already exists")
)

var validate = validator.New()

// fieldErrors maps struct field names to the sentinel reported for them.
var fieldErrors = map[string]error{
	"ID":        ErrEmptyID,
	"Name":      ErrEmptyName,
	"StartDate": ErrEmptyStartDate,
}

// Validate checks the required fields of a record.
// The first failing field is reported as its sentinel error.
func (r *Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if sentinel, ok := fieldErrors[verrs[0].StructField()]; ok {
			return sentinel
		}
		return fmt.Errorf("%s: failed %q check", verrs[0].Field(), verrs[0].Tag())
	}
	return err
}

// HasEndDate reports whether the record carries an explicit end date.
func (r *Record) HasEndDate() bool {
	return strings.TrimSpace(r.EndDate) != ""
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats a date in the YYYY-MM-DD layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
