package server

import (
	"time"

	"devconnect/internal/models"
	"devconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePost handles POST /api/posts. The author's name and avatar are
// snapshotted onto the post at creation time.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	user, err := s.userRepo.GetByID(c.Context(), s.currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	post := &models.Post{
		User:   user.ID,
		Text:   req.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(post)
}

// GetPosts handles GET /api/posts. Newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id", "Post not found")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id", "Post not found")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	if post.User != s.currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("User not authorized"))
	}

	if err := s.postRepo.Delete(c.Context(), postID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id and returns the updated likes array.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id", "Post not found")
	if err != nil {
		return nil
	}
	userID := s.currentUserID(c)

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	if post.LikedBy(userID) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("Post already liked"))
	}

	like := models.Like{ID: primitive.NewObjectID(), User: userID}
	if err := s.postRepo.AddLike(c.Context(), postID, like); err != nil {
		return s.fail(c, err)
	}

	post, err = s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post.Likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id and returns the updated likes
// array.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id", "Post not found")
	if err != nil {
		return nil
	}
	userID := s.currentUserID(c)

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	if !post.LikedBy(userID) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewConflictError("Post has not yet been liked"))
	}

	if err := s.postRepo.RemoveLike(c.Context(), postID, userID); err != nil {
		return s.fail(c, err)
	}

	post, err = s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post.Likes)
}

// AddComment handles POST /api/posts/comment/:id and returns the updated
// comments array.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id", "Post not found")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	user, err := s.userRepo.GetByID(c.Context(), s.currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	// Existence check first so commenting on a missing post is a 404, not a
	// silent no-op.
	if _, err := s.postRepo.GetByID(c.Context(), postID); err != nil {
		return s.fail(c, err)
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      user.ID,
		Text:      req.Text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.postRepo.AddComment(c.Context(), postID, comment); err != nil {
		return s.fail(c, err)
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post.Comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id. Removal is
// keyed by the comment's own id, never by its author, so two comments from the
// same user stay independent. Only the comment's author may delete it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseObjectID(c, "id", "Post not found")
	if err != nil {
		return nil
	}
	commentID, err := s.parseObjectID(c, "comment_id", "Comment does not exist")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}

	comment, ok := post.CommentByID(commentID)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Comment does not exist"))
	}
	if comment.User != s.currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("User not authorized"))
	}

	if err := s.postRepo.RemoveComment(c.Context(), postID, commentID); err != nil {
		return s.fail(c, err)
	}

	post, err = s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(post.Comments)
}
