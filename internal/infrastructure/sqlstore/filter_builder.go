package sqlstore

import (
	"fmt"
	"strings"

	"github.com/martijn/serverlist/internal/api/util"
)

// BuildFilterClause builds a SQL WHERE clause from a QueryFilter. The filter
// field is used verbatim as the column expression.
func BuildFilterClause(f util.QueryFilter) (string, []interface{}) {
	switch f.Operator {
	case util.OpEq:
		return fmt.Sprintf("%s = ?", f.Field), []interface{}{f.Value}
	case util.OpNe:
		return fmt.Sprintf("%s != ?", f.Field), []interface{}{f.Value}
	case util.OpIsNull:
		return fmt.Sprintf("%s IS NULL", f.Field), nil
	case util.OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", f.Field), nil
	case util.OpIn:
		if values, ok := f.Value.([]string); ok && len(values) > 0 {
			placeholders := make([]string, len(values))
			args := make([]interface{}, len(values))
			for i, v := range values {
				placeholders[i] = "?"
				args[i] = v
			}
			return fmt.Sprintf("%s IN (%s)", f.Field, strings.Join(placeholders, ", ")), args
		}
		return "", nil
	default:
		return "", nil
	}
}

// ApplyFilters applies QueryFilters to a query and returns the modified query and args.
// columns maps public field names to SQL expressions; unmapped fields are used as is.
func ApplyFilters(query string, args []interface{}, filters []util.QueryFilter, columns map[string]string) (string, []interface{}) {
	for _, f := range filters {
		if column, ok := columns[f.Field]; ok {
			f.Field = column
		}
		clause, filterArgs := BuildFilterClause(f)
		if clause != "" {
			query += " AND " + clause
			args = append(args, filterArgs...)
		}
	}
	return query, args
}

// ApplyOrdering applies OrderClauses to a query
func ApplyOrdering(query string, orders []util.OrderClause, defaultOrder string) string {
	if len(orders) > 0 {
		orderClauses := make([]string, 0, len(orders))
		for _, o := range orders {
			direction := "ASC"
			if o.Direction == util.OrderDesc {
				direction = "DESC"
			}
			orderClauses = append(orderClauses, fmt.Sprintf("%s %s", o.Field, direction))
		}
		return query + " ORDER BY " + strings.Join(orderClauses, ", ")
	}
	return query + " ORDER BY " + defaultOrder
}

// ApplyWindow applies offset/limit to a query. A negative limit means no limit.
func ApplyWindow(query string, args []interface{}, offset, limit int) (string, []interface{}) {
	if limit < 0 && offset > 0 {
		// Both sqlite and mysql only accept OFFSET after a LIMIT
		query += " LIMIT 9223372036854775807"
	} else if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}
