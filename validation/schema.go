// Package validation checks raw rental data before it flows downstream.
//
// Structural rules are declared as data: a Schema lists the expected columns
// with their type, nullability and value checks, plus table-wide checks.
// Every rule is evaluated and every violation is collected into one
// *SchemaErrors, so a data engineer sees all problems in one pass:
//
//	clean, err := validation.Validate(df)
//	var schemaErr *validation.SchemaErrors
//	if errors.As(err, &schemaErr) {
//		for _, v := range schemaErr.Violations() {
//			fmt.Println(v.Column, v.Check, v.FailureCases)
//		}
//	}
//
// Statistical suitability gates (target skewness, feature-label and
// feature-feature correlation) are separate functions that fail one at a time.
package validation

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Check names reported in violations.
const (
	CheckColumnPresent = "column_in_dataframe"
	CheckDataType      = "dtype"
	CheckNotNullable   = "not_nullable"
	CheckInRange       = "in_range"
	CheckIsIn          = "isin"
	CheckNullFraction  = "null_fraction"
	CheckNoDuplicates  = "no_duplicate_rows"
	CheckNoEmptyRows   = "no_empty_rows"
)

// TableColumn is the Column value of table-wide violations.
const TableColumn = "<table>"

// DataType is the declared storage type of a column.
type DataType int

const (
	String DataType = iota
	Int
	Float
)

// String returns the type name.
func (t DataType) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "unknown"
	}
}

// accepts reports whether a gota series type satisfies t. Whole-number float
// columns are stored as Int, which is still a float column.
func (t DataType) accepts(st series.Type) bool {
	switch t {
	case String:
		return st == series.String
	case Int:
		return st == series.Int
	case Float:
		return st == series.Float || st == series.Int
	default:
		return false
	}
}

// FailureCase is one offending value. Index is the row, or -1 when the
// failure concerns the column or table as a whole.
type FailureCase struct {
	Index int
	Value string
}

// Check is a rule evaluated over one column. Fn returns the failing cases.
type Check struct {
	Name  string
	Error string
	Fn    func(s series.Series) []FailureCase
}

// TableCheck is a rule evaluated over the whole frame.
type TableCheck struct {
	Name  string
	Error string
	Fn    func(df dataframe.DataFrame) []FailureCase
}

// Column declares an expected column.
type Column struct {
	Name     string
	Type     DataType
	Nullable bool
	Checks   []Check
}

// Schema is the declarative rule set.
type Schema struct {
	Columns []Column
	Checks  []TableCheck
}

// Evaluate runs every rule of the schema against df and returns the report.
// Value checks of a column are skipped when its type is wrong.
func (s Schema) Evaluate(df dataframe.DataFrame) *Report {
	report := NewReport()
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}

	for _, col := range s.Columns {
		if !present[col.Name] {
			report.Add(Violation{
				Column:       col.Name,
				Check:        CheckColumnPresent,
				Message:      "column '" + col.Name + "' not in dataframe",
				FailureCases: []FailureCase{{Index: -1, Value: col.Name}},
			})
			continue
		}

		values := df.Col(col.Name)
		if !col.Type.accepts(values.Type()) {
			report.Add(Violation{
				Column:       col.Name,
				Check:        CheckDataType,
				Message:      "expected series '" + col.Name + "' to have type " + col.Type.String(),
				FailureCases: []FailureCase{{Index: -1, Value: string(values.Type())}},
			})
			continue
		}

		if !col.Nullable {
			var nulls []FailureCase
			for i := 0; i < values.Len(); i++ {
				if values.Elem(i).IsNA() {
					nulls = append(nulls, FailureCase{Index: i, Value: "NaN"})
				}
			}
			if len(nulls) > 0 {
				report.Add(Violation{
					Column:       col.Name,
					Check:        CheckNotNullable,
					Message:      "non-nullable series '" + col.Name + "' contains null values",
					FailureCases: nulls,
				})
			}
		}

		for _, check := range col.Checks {
			if failures := check.Fn(values); len(failures) > 0 {
				report.Add(Violation{
					Column:       col.Name,
					Check:        check.Name,
					Message:      check.Error,
					FailureCases: failures,
				})
			}
		}
	}

	for _, check := range s.Checks {
		if failures := check.Fn(df); len(failures) > 0 {
			report.Add(Violation{
				Column:       TableColumn,
				Check:        check.Name,
				Message:      check.Error,
				FailureCases: failures,
			})
		}
	}
	return report
}
