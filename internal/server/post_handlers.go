package server

import (
	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost godoc
// @Summary Create a post
// @Description Create a post, story, reel or live stream. A vehicle tag must reference one of the caller's vehicles.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post data"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if !parseBody(c, &req) {
		return nil
	}
	return s.createPost(c, req)
}

func (s *Server) createPost(c *fiber.Ctx, req service.CreatePostInput) error {
	req.UserID = middleware.UserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// createTyped serves the POST endpoints of /stories, /reels and /live, which fix the post type.
func (s *Server) createTyped(postType models.PostType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.CreatePostInput
		if !parseBody(c, &req) {
			return nil
		}
		req.Type = postType
		return s.createPost(c, req)
	}
}

// listTyped serves the GET endpoints of /stories, /reels and /live.
func (s *Server) listTyped(postType models.PostType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.feed(c, service.FeedQuery{Type: postType})
	}
}

// GetFeed godoc
// @Summary Get feed
// @Description Visible content newest first with author, vehicle and liked flag resolved
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param type query string false "post, story, reel or live"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.FeedItem
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	return s.feed(c, service.FeedQuery{Type: models.PostType(c.Query("type"))})
}

// GetUserPosts godoc
// @Summary List a user's posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.FeedItem
// @Router /posts/user/{userId} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	return s.feed(c, service.FeedQuery{AuthorID: c.Params("userId")})
}

func (s *Server) feed(c *fiber.Ctx, q service.FeedQuery) error {
	page := parsePagination(c, 20)
	q.CallerID = middleware.UserID(c)
	q.Limit = page.Limit
	q.Offset = page.Offset

	items, err := s.feedService.GetFeed(c.UserContext(), q)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(items)
}

// SearchPosts godoc
// @Summary Search posts
// @Description Case-insensitive substring match on captions of visible posts
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.FeedItem
// @Router /search/posts [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	items, err := s.feedService.SearchPosts(c.UserContext(), middleware.UserID(c), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(items)
}

// DeletePost godoc
// @Summary Delete an owned post
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// EndLive godoc
// @Summary End a live stream
// @Tags live
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /live/{id}/end [post]
func (s *Server) EndLive(c *fiber.Ctx) error {
	post, err := s.postService.EndLive(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(post)
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} service.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	result, err := s.postService.ToggleLike(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

// CreateComment godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.CreateCommentInput
	if !parseBody(c, &req) {
		return nil
	}
	req.PostID = c.Params("id")
	req.UserID = middleware.UserID(c)

	comment, err := s.postService.AddComment(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments godoc
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	comments, err := s.postService.ListComments(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment godoc
// @Summary Delete own comment
// @Tags comments
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	err := s.postService.DeleteComment(c.UserContext(), c.Params("id"), c.Params("commentId"), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
