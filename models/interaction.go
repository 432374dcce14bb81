package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cached counter columns shared by projects and community posts.
const (
	ColumnLikeCount         = "like_count"
	ColumnCommentCount      = "comment_count"
	ColumnViewCount         = "view_count"
	ColumnCountsLastUpdated = "counts_last_updated"
)

// LikeTarget selects which kind of entity a like refers to.
type LikeTarget int

const (
	TargetProject LikeTarget = iota + 1
	TargetPost
)

func (t LikeTarget) String() string {
	switch t {
	case TargetProject:
		return "project"
	case TargetPost:
		return "post"
	default:
		return "unknown"
	}
}

// ProjectLike is unique per (project, user).
type ProjectLike struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_likes_project_user,priority:1"`
	UserID    string    `json:"userId" db:"user_id" gorm:"type:varchar(191);not null;uniqueIndex:idx_project_likes_project_user,priority:2"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Project *Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *ProjectLike) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PostLike is unique per (post, user).
type PostLike struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	PostID    uuid.UUID `json:"postId" db:"post_id" gorm:"type:uuid;not null;uniqueIndex:idx_post_likes_post_user,priority:1"`
	UserID    string    `json:"userId" db:"user_id" gorm:"type:varchar(191);not null;uniqueIndex:idx_post_likes_post_user,priority:2"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Post *CommunityPost `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	User *User          `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *PostLike) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ProjectBookmark is unique per (project, user). Bookmarks have no cached
// counter.
type ProjectBookmark struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_project_bookmarks_project_user,priority:1"`
	UserID    string    `json:"userId" db:"user_id" gorm:"type:varchar(191);not null;uniqueIndex:idx_project_bookmarks_project_user,priority:2;index:idx_project_bookmarks_user"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (b *ProjectBookmark) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
