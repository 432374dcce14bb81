package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to exactly one parent: a project or a community post.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Content   string     `json:"content" db:"content" gorm:"type:text;not null"`
	ProjectID *uuid.UUID `json:"projectId,omitempty" db:"project_id" gorm:"type:uuid;index;check:chk_comments_single_parent,(project_id IS NULL) <> (post_id IS NULL)"`
	PostID    *uuid.UUID `json:"postId,omitempty" db:"post_id" gorm:"type:uuid;index"`
	UserID    string     `json:"userId" db:"user_id" gorm:"type:varchar(191);not null;index"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`

	User    *User          `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Project *Project       `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Post    *CommunityPost `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Parent reports which entity the comment hangs off. ok is false unless
// exactly one parent is set.
func (c Comment) Parent() (target LikeTarget, id uuid.UUID, ok bool) {
	switch {
	case c.ProjectID != nil && c.PostID == nil:
		return TargetProject, *c.ProjectID, true
	case c.PostID != nil && c.ProjectID == nil:
		return TargetPost, *c.PostID, true
	default:
		return 0, uuid.Nil, false
	}
}
