package models

import (
	"time"
)

type Post struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Text      string    `gorm:"type:text" json:"text"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatorID uint64    `gorm:"not null;index" json:"creator_id"`
	Creator   User      `gorm:"foreignKey:CreatorID" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled per-request for the authenticated caller, not a column.
	VoteStatus *int `gorm:"-" json:"vote_status"`
}
