package repository

import (
	"fmt"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// whereBuilder accumulates positional conditions for list queries.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func newWhere(centerColumn, centerID string) *whereBuilder {
	w := &whereBuilder{}
	w.add(centerColumn+" = $%d", centerID)
	return w
}

// add appends a condition; every %d in format receives the next placeholder.
func (w *whereBuilder) add(format string, value interface{}) {
	n := strings.Count(format, "%d")
	idx := make([]interface{}, n)
	for i := range idx {
		idx[i] = len(w.args) + 1
	}
	w.conditions = append(w.conditions, fmt.Sprintf(format, idx...))
	w.args = append(w.args, value)
}

func (w *whereBuilder) search(columns []string, term string) {
	if strings.TrimSpace(term) == "" {
		return
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE $%d"
	}
	w.add("("+strings.Join(parts, " OR ")+")", "%"+strings.ToLower(strings.TrimSpace(term))+"%")
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return "1=1"
	}
	return strings.Join(w.conditions, " AND ")
}

// orderClause resolves a client sort key against an allow-list.
func orderClause(sortBy, sortOrder string, allowed map[string]string, fallback string) string {
	column, ok := allowed[sortBy]
	if !ok {
		column = allowed[fallback]
	}
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return column + " " + order
}

// pageWindow returns LIMIT and OFFSET for 1-based pages.
func pageWindow(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return size, (page - 1) * size
}
