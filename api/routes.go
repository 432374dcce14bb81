package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/sideshub-backend/models"
)

// setupRoutes mounts the REST surface under /api. Reads are public, with an
// optional session filling in interaction flags; every write needs a session
// and is rate limited per client IP.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware, limiter *rateLimiter) {
	r.Route("/api", func(r chi.Router) {
		r.Use(httpLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.health())

		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(auth.optional)

			r.Get("/projects", handlers.projectHandler.getAllProjects())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
			r.Get("/projects/{projectID}/comments", handlers.commentHandler.listComments(models.TargetProject, "projectID"))
			r.With(limiter.middleware).Post("/projects/{projectID}/views", handlers.interactionHandler.recordView())
			r.Get("/users/{userID}/projects", handlers.userHandler.getUserProjects())

			r.Get("/community/posts", handlers.communityPostHandler.getAllPosts())
			r.Get("/community/posts/{postID}", handlers.communityPostHandler.getPost())
			r.Get("/community/posts/{postID}/comments", handlers.commentHandler.listComments(models.TargetPost, "postID"))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.authenticate)

			r.Get("/auth/user", handlers.userHandler.getCurrentUser())
			r.Get("/me/bookmarks", handlers.userHandler.getMyBookmarks())

			r.Group(func(r chi.Router) {
				r.Use(limiter.middleware)

				// Projects
				r.Post("/projects", handlers.projectHandler.createProject())
				r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
				r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
				r.Post("/projects/{projectID}/like", handlers.interactionHandler.like(models.TargetProject, "projectID", true))
				r.Delete("/projects/{projectID}/like", handlers.interactionHandler.like(models.TargetProject, "projectID", false))
				r.Post("/projects/{projectID}/bookmark", handlers.interactionHandler.bookmark(true))
				r.Delete("/projects/{projectID}/bookmark", handlers.interactionHandler.bookmark(false))
				r.Post("/projects/{projectID}/comments", handlers.commentHandler.createComment(models.TargetProject, "projectID"))

				// Community posts
				r.Post("/community/posts", handlers.communityPostHandler.createPost())
				r.Put("/community/posts/{postID}", handlers.communityPostHandler.updatePost())
				r.Delete("/community/posts/{postID}", handlers.communityPostHandler.deletePost())
				r.Post("/community/posts/{postID}/like", handlers.interactionHandler.like(models.TargetPost, "postID", true))
				r.Delete("/community/posts/{postID}/like", handlers.interactionHandler.like(models.TargetPost, "postID", false))
				r.Post("/community/posts/{postID}/comments", handlers.commentHandler.createComment(models.TargetPost, "postID"))

				r.Delete("/comments/{commentID}", handlers.commentHandler.deleteComment())
				r.Post("/uploads", handlers.uploadHandler.createUpload())
			})
		})
	})
}
