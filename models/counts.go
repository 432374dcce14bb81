package models

import "time"

// ProjectCounts is a recomputed snapshot of a project's cached counters.
type ProjectCounts struct {
	LikeCount         int       `json:"likeCount"`
	CommentCount      int       `json:"commentCount"`
	ViewCount         int       `json:"viewCount"`
	CountsLastUpdated time.Time `json:"countsLastUpdated"`
}

// PostCounts is a recomputed snapshot of a community post's cached counters.
type PostCounts struct {
	LikeCount         int       `json:"likeCount"`
	CommentCount      int       `json:"commentCount"`
	CountsLastUpdated time.Time `json:"countsLastUpdated"`
}
