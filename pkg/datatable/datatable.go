// Package datatable implements the server-side contract consumed by the
// admin panel's dual-panel table renderer: an offset-paged query plus a
// (draw, recordsTotal, recordsFiltered, data) response envelope.
package datatable

import (
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 250
)

// Query binds the list parameters sent by the table renderer.
type Query struct {
	Draw        int    `form:"draw"`
	Start       int    `form:"start"`
	Length      int    `form:"length,default=10"`
	Search      string `form:"search"`
	OrderColumn string `form:"order_column"`
	OrderDir    string `form:"order_dir"`
}

// Response is the envelope the renderer expects for every list request.
type Response struct {
	Draw            int   `json:"draw"`
	RecordsTotal    int64 `json:"recordsTotal"`
	RecordsFiltered int64 `json:"recordsFiltered"`
	Data            any   `json:"data"`
}

// Normalize clamps paging values into the renderer's supported range.
func (q Query) Normalize() Query {
	if q.Start < 0 {
		q.Start = 0
	}
	if q.Length <= 0 {
		q.Length = defaultPageSize
	}
	if q.Length > maxPageSize {
		q.Length = maxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.OrderColumn = strings.TrimSpace(q.OrderColumn)
	if strings.EqualFold(q.OrderDir, "desc") {
		q.OrderDir = "desc"
	} else {
		q.OrderDir = "asc"
	}
	return q
}

// OrderClause resolves the requested sort against a whitelist of sortable
// columns. Unknown columns fall back to the provided default clause so a
// crafted order_column can never reach the SQL text.
func (q Query) OrderClause(sortable map[string]string, fallback string) string {
	column, ok := sortable[q.OrderColumn]
	if !ok || column == "" {
		return fallback
	}
	return column + " " + q.OrderDir
}

// Paginate runs the three-step renderer query against an already scoped
// statement: count the scoped total, apply the free-text search and count
// again, then order and page the final rows into out.
//
// The statement passed in must already carry the caller's access-scope
// predicate; this helper never widens it.
func Paginate(stmt *gorm.DB, q Query, searchColumns []string, orderClause string, out any) (total int64, filtered int64, err error) {
	q = q.Normalize()

	if err = stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	searched := applySearch(stmt.Session(&gorm.Session{}), q.Search, searchColumns)
	if err = searched.Session(&gorm.Session{}).Count(&filtered).Error; err != nil {
		return 0, 0, err
	}

	err = searched.
		Order(orderClause).
		Offset(q.Start).
		Limit(q.Length).
		Find(out).Error
	if err != nil {
		return 0, 0, err
	}
	return total, filtered, nil
}

func applySearch(stmt *gorm.DB, search string, columns []string) *gorm.DB {
	if search == "" || len(columns) == 0 {
		return stmt
	}
	pattern := "%" + escapeLike(search) + "%"
	clause := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		clause = append(clause, column+` LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return stmt.Where(strings.Join(clause, " OR "), args...)
}

func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)
	return value
}
