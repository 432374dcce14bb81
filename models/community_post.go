package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityPost is a discussion board entry.
type CommunityPost struct {
	ID                uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title             string     `json:"title" db:"title" gorm:"type:text;not null"`
	Content           string     `json:"content" db:"content" gorm:"type:text;not null"`
	IsPinned          bool       `json:"isPinned" db:"is_pinned" gorm:"not null;default:false"`
	UserID            string     `json:"userId" db:"user_id" gorm:"type:varchar(191);not null;index"`
	LikeCount         int        `json:"likeCount" db:"like_count" gorm:"not null;default:0"`
	CommentCount      int        `json:"commentCount" db:"comment_count" gorm:"not null;default:0"`
	CountsLastUpdated *time.Time `json:"countsLastUpdated,omitempty" db:"counts_last_updated"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at" gorm:"index"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *CommunityPost) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
