// Package filter builds the index filter expression from the structured
// predicates of a search request.
package filter

import (
	"fmt"
	"strings"
)

// Filter is the structured predicate set of a search request. Every field
// is optional: an absent field imposes no constraint. Values within a
// multi-valued field are disjoined, present fields are conjoined.
type Filter struct {
	Programs        []string
	AgesStudied     []string
	FocusPopulation []string
	Domain          string
	Subdomain1      string
	Subdomain2      string
	Subdomain3      string
	ResourceType    string
	Topic           string
	Year            string
	Status          string
	CFDANumber      string
	Summary         string
	Title           string
	PublishedDate   string
	ChangedDate     string
}

// Expression renders the filter in the index's OData syntax, or "" when no
// predicate is present. Multi-valued fields become parenthesized groups of
// or-joined any() clauses; scalar fields become eq clauses; all present
// clauses are and-joined. Single quotes in values are escaped by doubling,
// so a value can never alter the expression structure.
func (f Filter) Expression() string {
	var clauses []string

	if len(f.Programs) > 0 {
		clauses = append(clauses, anyClause("programs", "p", f.Programs))
	}
	if len(f.AgesStudied) > 0 {
		clauses = append(clauses, anyClause("ages_studied", "a", f.AgesStudied))
	}
	if len(f.FocusPopulation) > 0 {
		clauses = append(clauses, anyClause("focus_population", "f", f.FocusPopulation))
	}

	for _, c := range []struct{ field, value string }{
		{"domain", f.Domain},
		{"subdomain_1", f.Subdomain1},
		{"subdomain_2", f.Subdomain2},
		{"subdomain_3", f.Subdomain3},
		{"resource_type", f.ResourceType},
		{"topic", f.Topic},
		{"year", f.Year},
		{"Status", f.Status},
		{"CFDA_number", f.CFDANumber},
		{"summary", f.Summary},
		{"title", f.Title},
		{"published_date", f.PublishedDate},
		{"changed_date", f.ChangedDate},
	} {
		if c.value != "" {
			clauses = append(clauses, eqClause(c.field, c.value))
		}
	}

	return strings.Join(clauses, " and ")
}

func anyClause(field, v string, values []string) string {
	parts := make([]string, 0, len(values))
	for _, val := range values {
		parts = append(parts, fmt.Sprintf("%s/any(%s: %s eq '%s')", field, v, v, escape(val)))
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

func eqClause(field, value string) string {
	return fmt.Sprintf("%s eq '%s'", field, escape(value))
}

func escape(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
