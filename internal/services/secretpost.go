package services

import (
	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/utils"
)

// SecretPostService grants short-lived capability tokens for password
// protected posts. A token is bound to one post and one caller; presenting
// it elsewhere fails verification.
type SecretPostService struct {
	board *BoardService
	codec *utils.TokenCodec
	audit *AuditService
}

func NewSecretPostService(board *BoardService, codec *utils.TokenCodec, audit *AuditService) *SecretPostService {
	return &SecretPostService{board: board, codec: codec, audit: audit}
}

// IssueAccessToken verifies the post password and returns a capability
// token. The post's author never needs the password. A wrong password and
// a non-secret post both come back as ErrSecretPostDenied.
func (s *SecretPostService) IssueAccessToken(postID uint, userID, password, clientIP, userAgent string) (string, error) {
	post, err := s.board.GetPost(postID)
	if err != nil {
		return "", err
	}

	if !post.IsSecret {
		return "", ErrSecretPostDenied
	}

	if post.UserID != userID {
		if !utils.CheckPassword(password, post.PasswordHash) {
			return "", ErrSecretPostDenied
		}
	}

	token, err := s.codec.NewSecretPostToken(postID, userID)
	if err != nil {
		return "", err
	}

	s.audit.Record(AuditEntry{
		ActionType:   ActionSecretPostGrant,
		ResourceType: ResourcePost,
		ResourceID:   externalPostID(postID),
		UserID:       &userID,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
	})

	return token, nil
}

// CanRead reports whether the caller may read the secret post: the author
// always can, anyone else needs a live capability token for exactly this
// post and caller.
func (s *SecretPostService) CanRead(post *models.Post, userID, capabilityToken string) bool {
	if !post.IsSecret {
		return true
	}
	if post.UserID == userID && userID != "" {
		return true
	}
	if capabilityToken == "" {
		return false
	}
	return s.codec.VerifySecretPostToken(capabilityToken, post.ID, userID)
}
