package api

import (
	"time"

	"github.com/rpupo63/sideshub-backend/database"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, storage uploadPresigner, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler:       newProjectHandler(database.ProjectRepo(), database.LikeRepo(), database.BookmarkRepo()),
		communityPostHandler: newCommunityPostHandler(database.CommunityPostRepo(), database.LikeRepo()),
		interactionHandler:   newInteractionHandler(database.LikeRepo(), database.BookmarkRepo(), database.ViewRepo()),
		commentHandler:       newCommentHandler(database.CommentRepo()),
		userHandler:          newUserHandler(database.UserRepo(), database.ProjectRepo(), database.BookmarkRepo()),
		uploadHandler:        newUploadHandler(storage),
		healthHandler:        newHealthHandler(database, startupTime),
	}
}
