package catalog

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Where narrows db to the products matching q. Only active listings are public.
func (q Query) Where(db *gorm.DB) *gorm.DB {
	db = db.Where("status = ?", "active")

	if q.Search != "" {
		like := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.Condition != "" {
		db = db.Where("condition = ?", q.Condition)
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	return db
}

// Order applies the sort key. Relevance ranks title prefix matches, then
// title substring matches, then the rest; newest first within a rank.
func (q Query) Order(db *gorm.DB) *gorm.DB {
	switch q.Sort {
	case SortOldest:
		return db.Order("created_at asc").Order("id asc")
	case SortPriceLow:
		return db.Order("price asc").Order("id asc")
	case SortPriceHigh:
		return db.Order("price desc").Order("id desc")
	case SortRelevance:
		if q.Search != "" {
			term := escapeLike(strings.ToLower(q.Search))
			// A single expression: later Order calls would replace it.
			return db.Clauses(clause.OrderBy{
				Expression: clause.Expr{
					SQL:                `CASE WHEN LOWER(title) LIKE ? ESCAPE '\' THEN 0 WHEN LOWER(title) LIKE ? ESCAPE '\' THEN 1 ELSE 2 END, created_at desc, id desc`,
					Vars:               []interface{}{term + "%", "%" + term + "%"},
					WithoutParentheses: true,
				},
			})
		}
	}
	return db.Order("created_at desc").Order("id desc")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes wildcard characters in a search term match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// Paginate limits db to the requested page.
func (q Query) Paginate(db *gorm.DB) *gorm.DB {
	return db.Offset(q.Offset()).Limit(q.Limit)
}
