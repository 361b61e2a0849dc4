package validation

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// maxReportedCases bounds the failure cases printed per violation by Error.
const maxReportedCases = 5

// Violation is one failed rule.
type Violation struct {
	Column       string
	Check        string
	Message      string
	FailureCases []FailureCase
}

// String renders the violation on one line.
func (v Violation) String() string {
	cases := make([]string, 0, maxReportedCases)
	for i, fc := range v.FailureCases {
		if i == maxReportedCases {
			cases = append(cases, fmt.Sprintf("... (%d more)", len(v.FailureCases)-maxReportedCases))
			break
		}
		if fc.Index < 0 {
			cases = append(cases, fc.Value)
		} else {
			cases = append(cases, fmt.Sprintf("%d:%s", fc.Index, fc.Value))
		}
	}
	return fmt.Sprintf("column=%q check=%s: %s [%s]", v.Column, v.Check, v.Message, strings.Join(cases, ", "))
}

// Report accumulates violations. An empty report is a success.
type Report struct {
	violations []Violation
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add records a violation.
func (r *Report) Add(v Violation) {
	r.violations = append(r.violations, v)
}

// OK reports whether no violation was recorded.
func (r *Report) OK() bool {
	return len(r.violations) == 0
}

// Violations returns the recorded violations in evaluation order.
func (r *Report) Violations() []Violation {
	return append([]Violation(nil), r.violations...)
}

// Err returns nil for a successful report, otherwise a *SchemaErrors.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return &SchemaErrors{violations: r.Violations()}
}

// SchemaErrors is the aggregate failure of the structural checks.
type SchemaErrors struct {
	violations []Violation
}

// Error lists every violation.
func (e *SchemaErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bikeshare: schema validation failed with %d violation(s)", len(e.violations))
	for _, v := range e.violations {
		b.WriteString("\n  - ")
		b.WriteString(v.String())
	}
	return b.String()
}

// Violations returns every violation.
func (e *SchemaErrors) Violations() []Violation {
	return append([]Violation(nil), e.violations...)
}

// Has reports whether a violation of check on column was recorded. An empty
// check matches any rule of the column.
func (e *SchemaErrors) Has(column, check string) bool {
	for _, v := range e.violations {
		if v.Column == column && (check == "" || v.Check == check) {
			return true
		}
	}
	return false
}

// Columns returns the distinct columns with violations.
func (e *SchemaErrors) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, v := range e.violations {
		if !seen[v.Column] {
			seen[v.Column] = true
			cols = append(cols, v.Column)
		}
	}
	return cols
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (e *SchemaErrors) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "SchemaErrors").
		Int("violations", len(e.violations)).
		Strs("columns", e.Columns())
}
