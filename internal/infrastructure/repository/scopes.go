package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isPostgres reports whether db talks to PostgreSQL. Row locks, lock_timeout
// and ILIKE are only issued there.
func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite serializes writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if isPostgres(db) {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// SearchScope matches term case-insensitively against any of columns
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		op := "LIKE"
		if isPostgres(db) {
			op = "ILIKE"
		}
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = col + " " + op + " ?"
			args[i] = "%" + term + "%"
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// DateRangeScope filters column to [start, end] when either bound is set
func DateRangeScope(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" <= ?", *end)
		}
		return db
	}
}

// orderScope applies a whitelisted sort column, falling back to def
func orderScope(sortBy, sortOrder string, allowed map[string]string, def string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col, ok := allowed[sortBy]
		if !ok {
			return db.Order(def)
		}
		dir := "ASC"
		if strings.EqualFold(sortOrder, "desc") {
			dir = "DESC"
		}
		return db.Order(col + " " + dir + ", id " + dir)
	}
}
