package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/middleware"
	"github.com/openboard-io/openboard/backend/internal/services"
	"github.com/openboard-io/openboard/backend/pkg/logger"
	"github.com/openboard-io/openboard/backend/pkg/response"
)

// PostTokenHeader carries the capability token for secret posts.
const PostTokenHeader = "X-Post-Token"

type BoardHandler struct {
	boardService  *services.BoardService
	secretService *services.SecretPostService
}

func NewBoardHandler(boardService *services.BoardService, secretService *services.SecretPostService) *BoardHandler {
	return &BoardHandler{
		boardService:  boardService,
		secretService: secretService,
	}
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

func postIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid post id")
		return 0, false
	}
	return uint(id), true
}

// GetPost returns a post and counts the view, at most once per viewer per
// UTC day. Secret posts come back without content unless the caller is the
// author or presents a capability token.
// GET /api/posts/:id
func (h *BoardHandler) GetPost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	post, err := h.boardService.GetPost(postID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.ServerError(c, "failed to load post")
		return
	}

	userID := middleware.GetUserID(c)
	capToken := c.GetHeader(PostTokenHeader)
	if capToken == "" {
		capToken = c.Query("access_token")
	}
	if post.IsSecret && !h.secretService.CanRead(post, userID, capToken) {
		// Existence is not hidden; the content is.
		response.Success(c, gin.H{
			"id":        post.ID,
			"board_id":  post.BoardID,
			"title":     post.Title,
			"is_secret": true,
			"locked":    true,
		})
		return
	}

	// Anonymous viewers dedupe by client IP.
	actorKey := userID
	if actorKey == "" {
		actorKey = c.ClientIP()
	}
	if _, err := h.boardService.RecordViewIfNew(postID, actorKey, c.Request.UserAgent(), time.Now()); err != nil {
		logger.Warn().Err(err).Uint("post_id", postID).Msg("view recording failed")
	}

	payload := gin.H{"post": post}
	if userID != "" {
		payload["liked"] = h.boardService.Liked(postID, userID)
		payload["bookmarked"] = h.boardService.Bookmarked(postID, userID)
	}
	response.Success(c, payload)
}

// ToggleLike flips the caller's like on the post
// POST /api/posts/:id/like
func (h *BoardHandler) ToggleLike(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	liked, likeCount, err := h.boardService.TogglePostLike(
		postID, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.toggleError(c, err)
		return
	}

	response.Success(c, gin.H{"liked": liked, "like_count": likeCount})
}

// ToggleBookmark flips the caller's bookmark on the post
// POST /api/posts/:id/bookmark
func (h *BoardHandler) ToggleBookmark(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	bookmarked, err := h.boardService.ToggleBookmark(
		postID, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.toggleError(c, err)
		return
	}

	response.Success(c, gin.H{"bookmarked": bookmarked})
}

func (h *BoardHandler) toggleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		response.NotFound(c, "post not found")
	case errors.Is(err, services.ErrConflictRetry):
		response.Conflict(c, "please retry")
	default:
		response.ServerError(c, "toggle failed")
	}
}

// VerifyPassword checks a secret post's password and returns a short-lived
// access token bound to this post and caller
// POST /api/posts/:id/verify-password
func (h *BoardHandler) VerifyPassword(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	// The author may omit the body entirely, so binding errors are not fatal.
	var req verifyPasswordRequest
	_ = c.ShouldBindJSON(&req)
	userID := middleware.GetUserID(c)

	token, err := h.secretService.IssueAccessToken(
		postID, userID, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, services.ErrSecretPostDenied):
			response.Forbidden(c, "wrong password")
		default:
			response.ServerError(c, "verification failed")
		}
		return
	}

	response.Success(c, gin.H{"post_token": token})
}
