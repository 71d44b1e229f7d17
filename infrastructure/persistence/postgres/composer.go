package postgres

import (
	"fmt"
	"strings"

	"catalog-backend/pkg/common"
)

// queryBuilder accumulates filter predicates written with '?' markers and
// the values bound to them, in order. The final SQL is rendered into
// numbered placeholders in one pass, so fragments compose without anyone
// tracking parameter positions.
type queryBuilder struct {
	conds  []string
	params []any
}

func (qb *queryBuilder) where(cond string, args ...any) {
	qb.conds = append(qb.conds, cond)
	qb.params = append(qb.params, args...)
}

// whereIn adds an IN predicate with one placeholder per value. Callers must
// not pass an empty slice.
func (qb *queryBuilder) whereIn(column string, values []string) {
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = "?"
		qb.params = append(qb.params, v)
	}
	qb.conds = append(qb.conds, fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ", ")))
}

func (qb *queryBuilder) empty() bool {
	return len(qb.conds) == 0
}

func (qb *queryBuilder) whereClause() string {
	if qb.empty() {
		return ""
	}
	return "WHERE " + strings.Join(qb.conds, " AND ")
}

// renderPositional rewrites each '?' marker into $1, $2, ... in order.
func renderPositional(sqlText string) string {
	var b strings.Builder
	b.Grow(len(sqlText))
	n := 0
	for _, r := range sqlText {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pageQuery assembles the two-phase listing query. The base query is wrapped
// in a CTE; an inner DISTINCT subquery applies filters, keyset cursor, order
// and limit over primary ids only; the outer query joins the surviving ids
// back to the CTE for the full denormalized rows. Applying LIMIT to ids
// rather than joined rows keeps page sizes correct when joins multiply rows.
type pageQuery struct {
	cteName  string
	base     string
	filters  *queryBuilder
	limit    int
	cursor   *common.Cursor
	distinct []string // id columns of the inner subquery, defaults to {"id"}
}

func (p pageQuery) build() (string, []any) {
	filters := p.filters
	if filters == nil {
		filters = &queryBuilder{}
	}
	if p.cursor != nil {
		filters.where("sort_id < ?", p.cursor.SortID)
	}

	idCols := p.distinct
	if len(idCols) == 0 {
		idCols = []string{"id"}
	}
	joinConds := make([]string, len(idCols))
	for i, col := range idCols {
		joinConds[i] = fmt.Sprintf("page.%[1]s = cte.%[1]s", col)
	}

	sqlText := fmt.Sprintf(`WITH %[1]s AS (
%[2]s
)
SELECT cte.*
FROM (
    SELECT DISTINCT %[3]s, sort_id
    FROM %[1]s
    %[4]s
    ORDER BY sort_id DESC
    LIMIT ?
) page
JOIN %[1]s cte ON %[5]s
ORDER BY cte.sort_id DESC`,
		p.cteName,
		p.base,
		strings.Join(idCols, ", "),
		filters.whereClause(),
		strings.Join(joinConds, " AND "),
	)

	params := append(append([]any{}, filters.params...), p.limit)
	return renderPositional(sqlText), params
}

// setClause builds the SET list of a sparse UPDATE.
type setClause struct {
	assignments []string
	params      []any
}

func (s *setClause) set(column string, value any) {
	s.assignments = append(s.assignments, column+" = ?")
	s.params = append(s.params, value)
}

func (s *setClause) setRaw(assignment string) {
	s.assignments = append(s.assignments, assignment)
}

func (s *setClause) empty() bool {
	return len(s.assignments) == 0
}

func (s *setClause) render() string {
	return strings.Join(s.assignments, ", ")
}

// valuesClause renders the VALUES list of a multi-row insert with width
// columns per row.
func valuesClause(rows, width int) string {
	marks := strings.Repeat("?, ", width)
	rowTmpl := "(" + strings.TrimSuffix(marks, ", ") + ")"
	parts := make([]string, rows)
	for i := range parts {
		parts[i] = rowTmpl
	}
	return strings.Join(parts, ", ")
}
