package util

import (
	"fmt"
	"strings"
)

// QueryOperator represents a filter operator
type QueryOperator string

const (
	OpEq        QueryOperator = "eq"
	OpNe        QueryOperator = "ne"
	OpIn        QueryOperator = "in"
	OpIsNull    QueryOperator = "isnull"
	OpIsNotNull QueryOperator = "isnotnull"
)

// QueryFilter represents a single filter condition
type QueryFilter struct {
	Field    string
	Operator QueryOperator
	Value    interface{} // scalar, or []string for in
}

// Eq builds an equality condition
func Eq(field string, value interface{}) QueryFilter {
	return QueryFilter{Field: field, Operator: OpEq, Value: value}
}

// OrderDirection represents sort direction
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// OrderClause represents a single order by clause
type OrderClause struct {
	Field     string
	Direction OrderDirection
}

// ValidateFilterFields validates that all filter fields are in the allowed set
func ValidateFilterFields(filters []QueryFilter, allowedFields []string) error {
	allowed := make(map[string]bool)
	for _, f := range allowedFields {
		allowed[f] = true
	}

	for _, filter := range filters {
		if !allowed[filter.Field] {
			return fmt.Errorf("invalid query field: %s (valid fields: %s)", filter.Field, strings.Join(allowedFields, ", "))
		}
	}

	return nil
}
