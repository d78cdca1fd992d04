package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// whereBuilder accumulates positional conditions for hand-built queries.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

// add appends a condition. Every "?" in cond is replaced by the next placeholder bound to arg.
func (w *whereBuilder) add(cond string, arg interface{}) {
	placeholder := fmt.Sprintf("$%d", len(w.args)+1)
	w.conditions = append(w.conditions, strings.ReplaceAll(cond, "?", placeholder))
	w.args = append(w.args, arg)
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " AND " + strings.Join(w.conditions, " AND ")
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func normalizePage(page, pageSize int) (int, int, int) {
	page, pageSize = models.NormalizePage(page, pageSize)
	return page, pageSize, (page - 1) * pageSize
}

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
