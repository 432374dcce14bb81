package api

import (
	"github.com/rpupo63/sideshub-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler       projectHandler
	communityPostHandler communityPostHandler
	interactionHandler   interactionHandler
	commentHandler       commentHandler
	userHandler          userHandler
	uploadHandler        uploadHandler
	healthHandler        healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// InteractionResponse acknowledges a like or bookmark toggle. Success is
// false when the call had no effect (already liked, nothing to remove).
type InteractionResponse struct {
	Success   bool `json:"success"`
	LikeCount *int `json:"likeCount,omitempty"`
}

// CurrentUser is the signed-in user's own profile, the one place email is
// served.
type CurrentUser struct {
	models.User
	Email *string `json:"email,omitempty"`
}

// UserInteractions tells the signed-in viewer what they already did to an
// entity. Anonymous viewers get all false.
type UserInteractions struct {
	IsLiked      bool `json:"isLiked"`
	IsBookmarked bool `json:"isBookmarked"`
}

type ProjectDetail struct {
	models.Project
	UserInteractions UserInteractions `json:"userInteractions"`
}

type ProjectCollection struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

type PostInteractions struct {
	IsLiked bool `json:"isLiked"`
}

type CommunityPostDetail struct {
	models.CommunityPost
	UserInteractions PostInteractions `json:"userInteractions"`
}

type CommunityPostCollection struct {
	Posts []models.CommunityPost `json:"posts"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

type ProjectRequest struct {
	Title            string   `json:"title"`
	ShortDescription string   `json:"shortDescription"`
	FullDescription  *string  `json:"fullDescription"`
	ThumbnailURL     *string  `json:"thumbnailUrl"`
	DemoURL          *string  `json:"demoUrl"`
	SourceURL        *string  `json:"sourceUrl"`
	Tags             []string `json:"tags"`
	TechStack        []string `json:"techStack"`
}

type CommunityPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type UploadRequest struct {
	ContentType string `json:"contentType"`
}
