package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a published side-project listing. ViewCount, LikeCount and
// CommentCount are cached aggregates of project_views, project_likes and
// comments; reads serve them as stored.
type Project struct {
	ID                uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title             string                      `json:"title" db:"title" gorm:"type:text;not null"`
	ShortDescription  string                      `json:"shortDescription" db:"short_description" gorm:"type:text;not null"`
	FullDescription   *string                     `json:"fullDescription,omitempty" db:"full_description" gorm:"type:text"`
	ThumbnailURL      *string                     `json:"thumbnailUrl,omitempty" db:"thumbnail_url" gorm:"column:thumbnail_url;type:text"`
	DemoURL           *string                     `json:"demoUrl,omitempty" db:"demo_url" gorm:"column:demo_url;type:text"`
	SourceURL         *string                     `json:"sourceUrl,omitempty" db:"source_url" gorm:"column:source_url;type:text"`
	Tags              datatypes.JSONSlice[string] `json:"tags" db:"tags"`
	TechStack         datatypes.JSONSlice[string] `json:"techStack" db:"tech_stack"`
	UserID            string                      `json:"userId" db:"user_id" gorm:"type:varchar(191);not null;index:idx_projects_user_created,priority:1"`
	IsFeatured        bool                        `json:"isFeatured" db:"is_featured" gorm:"not null;default:false;index"`
	ViewCount         int                         `json:"viewCount" db:"view_count" gorm:"not null;default:0"`
	LikeCount         int                         `json:"likeCount" db:"like_count" gorm:"not null;default:0"`
	CommentCount      int                         `json:"commentCount" db:"comment_count" gorm:"not null;default:0"`
	CountsLastUpdated *time.Time                  `json:"countsLastUpdated,omitempty" db:"counts_last_updated"`
	CreatedAt         time.Time                   `json:"createdAt" db:"created_at" gorm:"index:idx_projects_user_created,priority:2"`
	UpdatedAt         time.Time                   `json:"updatedAt" db:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	if p.TechStack == nil {
		p.TechStack = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ProjectView is one row of the append-only view log behind Project.ViewCount.
// Anonymous views carry only the client IP.
type ProjectView struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;index"`
	UserID    *string   `json:"userId,omitempty" db:"user_id" gorm:"type:varchar(191)"`
	IPAddress *string   `json:"ipAddress,omitempty" db:"ip_address" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Project *Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (v *ProjectView) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
