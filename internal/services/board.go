package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/pkg/logger"
	"gorm.io/gorm"
)

// BoardService covers the post interactions that ride on the session core:
// like/bookmark toggles, per-day view dedup, and post lookup.
type BoardService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewBoardService(db *gorm.DB, audit *AuditService) *BoardService {
	return &BoardService{db: db, audit: audit}
}

func externalPostID(postID uint) string {
	return strconv.FormatUint(uint64(postID), 10)
}

// GetPost loads a non-deleted post by primary key.
func (s *BoardService) GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.Where("id = ? AND is_deleted = ?", postID, false).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// TogglePostLike flips the user's like on a post and returns the resulting
// state. The unique index on (post_id, user_id) is the arbiter under
// concurrency: a duplicate-key error means another request inserted between
// our read and write, so the whole toggle is retried once from the top.
func (s *BoardService) TogglePostLike(postID uint, userID, clientIP, userAgent string) (liked bool, likeCount int64, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		liked, likeCount, err = s.togglePostLikeOnce(postID, userID)
		if err == nil {
			return liked, likeCount, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, 0, err
		}
	}

	s.audit.Record(AuditEntry{
		ActionType:   ActionToggleConflict,
		ResourceType: ResourcePost,
		ResourceID:   externalPostID(postID),
		UserID:       &userID,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
		NewValue:     map[string]string{"toggle": "like"},
	})
	return false, 0, ErrConflictRetry
}

func (s *BoardService) togglePostLikeOnce(postID uint, userID string) (bool, int64, error) {
	var liked bool
	var likeCount int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", postID, false).
			First(&models.Post{}).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.PostLike{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			liked = false
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("like_count", gorm.Expr("like_count - ?", result.RowsAffected)).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return err
			}
		}

		// Authoritative count comes from the rows, not the cached column.
		return tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likeCount).Error
	})
	return liked, likeCount, err
}

// ToggleBookmark flips the user's bookmark on a post, with the same
// retry-once discipline as likes. Bookmarks carry no cached counter.
func (s *BoardService) ToggleBookmark(postID uint, userID, clientIP, userAgent string) (bookmarked bool, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		bookmarked, err = s.toggleBookmarkOnce(postID, userID)
		if err == nil {
			return bookmarked, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, err
		}
	}

	s.audit.Record(AuditEntry{
		ActionType:   ActionToggleConflict,
		ResourceType: ResourcePost,
		ResourceID:   externalPostID(postID),
		UserID:       &userID,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
		NewValue:     map[string]string{"toggle": "bookmark"},
	})
	return false, ErrConflictRetry
}

func (s *BoardService) toggleBookmarkOnce(postID uint, userID string) (bool, error) {
	var bookmarked bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", postID, false).
			First(&models.Post{}).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.Bookmark{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			bookmarked = false
			return nil
		}

		if err := tx.Create(&models.Bookmark{PostID: postID, UserID: userID}).Error; err != nil {
			return err
		}
		bookmarked = true
		return nil
	})
	return bookmarked, err
}

// RecordViewIfNew counts at most one view per actor per post per UTC
// calendar day. The actor key is the user's external id when logged in,
// otherwise the client IP. A duplicate insert means the view was already
// counted today and is not an error.
func (s *BoardService) RecordViewIfNew(postID uint, actorKey, userAgent string, now time.Time) (counted bool, err error) {
	view := models.PostView{
		PostID:    postID,
		ActorKey:  actorKey,
		ViewDate:  now.UTC().Format("2006-01-02"),
		UserAgent: userAgent,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&view).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("view_count", gorm.Expr("view_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Liked and Bookmarked report the caller's current interaction state, for
// decorating post detail responses.
func (s *BoardService) Liked(postID uint, userID string) bool {
	var count int64
	if err := s.db.Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		logger.Warn().Err(err).Uint("post_id", postID).Msg("like lookup failed")
		return false
	}
	return count > 0
}

func (s *BoardService) Bookmarked(postID uint, userID string) bool {
	var count int64
	if err := s.db.Model(&models.Bookmark{}).
		Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		logger.Warn().Err(err).Uint("post_id", postID).Msg("bookmark lookup failed")
		return false
	}
	return count > 0
}
