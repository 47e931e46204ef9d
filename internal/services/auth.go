package services

import (
	"errors"
	"time"

	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"github.com/openboard-io/openboard/backend/pkg/logger"
	"gorm.io/gorm"
)

// AuthService owns credential verification and the refresh-token session
// records. No other component writes to the refresh_tokens table.
type AuthService struct {
	db    *gorm.DB
	codec *utils.TokenCodec
	audit *AuditService
}

func NewAuthService(db *gorm.DB, codec *utils.TokenCodec, audit *AuditService) *AuthService {
	return &AuthService{db: db, codec: codec, audit: audit}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"` // username or email
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken    string
	AccessExpireAt time.Time
	RefreshToken   string // the presented token, unchanged
}

// Register creates a new principal with a unique username and email.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UserID:       utils.NewExternalID("USER"),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Nickname:     req.Nickname,
		IsActive:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return &user, nil
}

// Authenticate verifies a password against the principal found by username
// or email. Unknown identifier and wrong password produce the identical
// ErrInvalidCredentials; the account-state errors are only reachable after
// the password already matched.
func (s *AuthService) Authenticate(identifier, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if user.IsDeleted {
		return nil, ErrAccountDeleted
	}

	return &user, nil
}

// Login issues an access/refresh pair and persists one session record per
// call. Existing sessions for the user are untouched; concurrent sessions
// from several devices are expected.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	user, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.NewAccessToken(user.UserID, user.Username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.NewRefreshToken(user.UserID)
	if err != nil {
		return nil, err
	}

	// Only the hash ever reaches the database.
	tokenHash, err := utils.HashToken(refreshToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refreshExpireAt := now.Add(s.codec.RefreshTTL())
	record := models.RefreshToken{
		TokenID:    utils.NewExternalID("RT"),
		UserID:     user.UserID,
		TokenHash:  tokenHash,
		DeviceInfo: utils.DeviceInfo(userAgent),
		IPAddress:  clientIP,
		ExpiresAt:  refreshExpireAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	s.db.Model(user).Update("last_login_at", now)

	s.audit.Record(AuditEntry{
		ActionType:   ActionLogin,
		ResourceType: ResourceSession,
		ResourceID:   record.TokenID,
		UserID:       &user.UserID,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
	})

	return &LoginResult{
		AccessToken:     accessToken,
		AccessExpireAt:  now.Add(s.codec.AccessTTL()),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            user,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is returned unchanged: tokens stay valid until
// natural expiry or explicit revocation, they are not rotated on use.
func (s *AuthService) Refresh(presentedToken, clientIP, userAgent string) (*RefreshResult, error) {
	decoded, ok := s.codec.Decode(presentedToken)
	if !ok || decoded.Type != utils.TokenTypeRefresh || decoded.Subject == "" {
		return nil, ErrInvalidToken
	}

	var user models.User
	err := s.db.Where("user_id = ? AND is_deleted = ? AND is_active = ?",
		decoded.Subject, false, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// The stored hash is salted, so there is no lookup key: scan the user's
	// active unexpired records and verify each. Bounded by a user's
	// realistic concurrent-session count.
	now := time.Now().UTC()
	var candidates []models.RefreshToken
	if err := s.db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?",
		user.UserID, now).Find(&candidates).Error; err != nil {
		return nil, err
	}

	var matched *models.RefreshToken
	for i := range candidates {
		if utils.CheckTokenHash(presentedToken, candidates[i].TokenHash) {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrInvalidToken
	}

	if err := s.db.Model(matched).Update("last_used_at", now).Error; err != nil {
		return nil, err
	}

	accessToken, err := s.codec.NewAccessToken(user.UserID, user.Username)
	if err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActionType:   ActionTokenRefresh,
		ResourceType: ResourceSession,
		ResourceID:   matched.TokenID,
		UserID:       &user.UserID,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
	})

	return &RefreshResult{
		AccessToken:    accessToken,
		AccessExpireAt: now.Add(s.codec.AccessTTL()),
		RefreshToken:   presentedToken,
	}, nil
}

// Logout revokes sessions. With a presented refresh token only the matching
// record is revoked (silently a no-op when nothing matches); without one,
// every active unexpired session of the user is revoked. Callers treat
// logout as always succeeding; the returned error is for logging only.
func (s *AuthService) Logout(userID, clientIP, userAgent, presentedToken string) error {
	now := time.Now().UTC()

	if presentedToken != "" {
		var candidates []models.RefreshToken
		if err := s.db.Where("user_id = ? AND revoked_at IS NULL",
			userID).Find(&candidates).Error; err != nil {
			return err
		}

		for i := range candidates {
			if utils.CheckTokenHash(presentedToken, candidates[i].TokenHash) {
				if err := s.db.Model(&candidates[i]).Update("revoked_at", now).Error; err != nil {
					return err
				}
				s.audit.Record(AuditEntry{
					ActionType:   ActionLogout,
					ResourceType: ResourceSession,
					ResourceID:   candidates[i].TokenID,
					UserID:       &userID,
					IPAddress:    clientIP,
					UserAgent:    userAgent,
				})
				return nil
			}
		}
		// No matching record: logout stays best-effort.
		logger.Info().Str("user_id", userID).Msg("logout with unknown refresh token, nothing revoked")
		return nil
	}

	result := s.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Update("revoked_at", now)
	if result.Error != nil {
		return result.Error
	}

	s.audit.Record(AuditEntry{
		ActionType:   ActionLogout,
		ResourceType: ResourceSession,
		ResourceID:   userID,
		UserID:       &userID,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
		NewValue:     map[string]int64{"revoked_sessions": result.RowsAffected},
	})
	return nil
}

// LogoutByRefreshToken revokes the session of a presented refresh token
// when no authenticated principal is available. An undecodable token is a
// silent no-op, like any other logout miss.
func (s *AuthService) LogoutByRefreshToken(presentedToken, clientIP, userAgent string) error {
	decoded, ok := s.codec.Decode(presentedToken)
	if !ok || decoded.Type != utils.TokenTypeRefresh || decoded.Subject == "" {
		return nil
	}
	return s.Logout(decoded.Subject, clientIP, userAgent, presentedToken)
}

// ResolvePrincipal validates a bearer access token and loads its principal.
// Every protected route goes through this.
func (s *AuthService) ResolvePrincipal(accessToken string) (*models.User, error) {
	decoded, ok := s.codec.Decode(accessToken)
	if !ok || decoded.Type != utils.TokenTypeAccess || decoded.Subject == "" {
		return nil, ErrInvalidToken
	}

	var user models.User
	err := s.db.Where("user_id = ? AND is_deleted = ? AND is_active = ?",
		decoded.Subject, false, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByExternalID loads a non-deleted principal by its external id.
func (s *AuthService) GetUserByExternalID(userID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type SessionListRequest struct {
	Page          int    `form:"page" binding:"min=0"`
	PageSize      int    `form:"page_size" binding:"min=0,max=100"`
	UserID        string `form:"user_id"`
	IncludeClosed bool   `form:"include_closed"` // revoked or expired records
}

type SessionListResponse struct {
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.RefreshToken `json:"items"`
}

// ListSessions pages through refresh-token records for the admin surface.
// The hash column never leaves the model's json:"-" tag.
func (s *AuthService) ListSessions(req *SessionListRequest) (*SessionListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.RefreshToken{})
	if req.UserID != "" {
		query = query.Where("user_id = ?", req.UserID)
	}
	if !req.IncludeClosed {
		query = query.Where("revoked_at IS NULL AND expires_at > ?", time.Now().UTC())
	}

	var total int64
	query.Count(&total)

	var items []models.RefreshToken
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &SessionListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// CreateAdminIfNotExists seeds a default admin account with the ADMIN role
// on first startup.
func (s *AuthService) CreateAdminIfNotExists(roles *RoleService) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin")
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:       utils.NewExternalID("USER"),
		Username:     "admin",
		Email:        "admin@localhost",
		PasswordHash: hash,
		Name:         "Administrator",
		IsActive:     true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	return roles.AssignRole(admin.UserID, "ADMIN", nil)
}
