package models

import (
	"time"
)

// Vote is one row per (user, post) pair; value is +1 or -1 and is updated in
// place when a user flips their vote. post.points must equal the sum of value
// over the post's votes at all times, so every write to this table adjusts
// points by the delta inside the same transaction.
type Vote struct {
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
