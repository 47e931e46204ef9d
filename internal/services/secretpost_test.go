package services

import (
	"errors"
	"testing"

	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"gorm.io/gorm"
)

func newTestSecretPostService(t *testing.T) (*SecretPostService, *BoardService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	audit := NewAuditService(db)
	board := NewBoardService(db, audit)
	return NewSecretPostService(board, newTestCodec(t), audit), board, db
}

func createSecretPost(t *testing.T, db *gorm.DB, authorID, password string) *models.Post {
	t.Helper()
	post := createTestPost(t, db, authorID)
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing post password failed: %v", err)
	}
	db.Model(post).Updates(map[string]interface{}{"is_secret": true, "password_hash": hash})
	post.IsSecret = true
	post.PasswordHash = hash
	return post
}

func TestIssueAccessToken_CorrectPassword(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	post := createSecretPost(t, db, "USER_AUTHOR1", "post-secret")

	token, err := svc.IssueAccessToken(post.ID, "USER_READER1", "post-secret", "", "")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty capability token")
	}

	if !svc.CanRead(post, "USER_READER1", token) {
		t.Error("issued token does not grant read access")
	}
}

func TestIssueAccessToken_WrongPassword(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	post := createSecretPost(t, db, "USER_AUTHOR1", "post-secret")

	_, err := svc.IssueAccessToken(post.ID, "USER_READER1", "wrong", "", "")
	if !errors.Is(err, ErrSecretPostDenied) {
		t.Errorf("wrong password error = %v, expected ErrSecretPostDenied", err)
	}
}

func TestIssueAccessToken_AuthorBypassesPassword(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	post := createSecretPost(t, db, "USER_AUTHOR1", "post-secret")

	token, err := svc.IssueAccessToken(post.ID, "USER_AUTHOR1", "", "", "")
	if err != nil {
		t.Fatalf("author could not issue token without password: %v", err)
	}
	if token == "" {
		t.Error("empty token for author")
	}
}

func TestIssueAccessToken_NonSecretPost(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	post := createTestPost(t, db, "USER_AUTHOR1")

	_, err := svc.IssueAccessToken(post.ID, "USER_READER1", "anything", "", "")
	if !errors.Is(err, ErrSecretPostDenied) {
		t.Errorf("non-secret post error = %v, expected ErrSecretPostDenied", err)
	}
}

func TestCanRead_TokenBoundToPostAndUser(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	post := createSecretPost(t, db, "USER_AUTHOR1", "post-secret")
	other := createSecretPost(t, db, "USER_AUTHOR1", "other-secret")

	token, err := svc.IssueAccessToken(post.ID, "USER_READER1", "post-secret", "", "")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	if svc.CanRead(other, "USER_READER1", token) {
		t.Error("token for one post opened another")
	}
	if svc.CanRead(post, "USER_READER2", token) {
		t.Error("token issued to one user worked for another")
	}
}

func TestCanRead_Rules(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	public := createTestPost(t, db, "USER_AUTHOR1")
	secret := createSecretPost(t, db, "USER_AUTHOR1", "post-secret")

	tests := []struct {
		name     string
		post     *models.Post
		userID   string
		token    string
		expected bool
	}{
		{"public post, anonymous", public, "", "", true},
		{"secret post, author", secret, "USER_AUTHOR1", "", true},
		{"secret post, no token", secret, "USER_READER1", "", false},
		{"secret post, anonymous", secret, "", "", false},
		{"secret post, garbage token", secret, "USER_READER1", "not.a.jwt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.CanRead(tt.post, tt.userID, tt.token); got != tt.expected {
				t.Errorf("CanRead() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCanRead_AccessTokenIsNotACapability(t *testing.T) {
	svc, _, db := newTestSecretPostService(t)
	secret := createSecretPost(t, db, "USER_AUTHOR1", "post-secret")

	codec := newTestCodec(t)
	accessToken, err := codec.NewAccessToken("USER_READER1", "reader")
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	if svc.CanRead(secret, "USER_READER1", accessToken) {
		t.Error("general access token opened a secret post")
	}
}
