package database

import (
	"time"

	"gorm.io/gorm"
)

// CreatedBefore restricts a query to rows strictly older than the keyset
// cursor. A nil cursor means the first page.
func CreatedBefore(cursor *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor == nil {
			return db
		}
		return db.Where("created_at < ?", *cursor)
	}
}
