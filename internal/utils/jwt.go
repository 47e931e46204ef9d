package utils

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openboard-io/openboard/backend/internal/config"
)

// Token type tags carried in the "type" claim. Refresh handling checks the
// tag explicitly so an access token can never stand in for a refresh token.
const (
	TokenTypeAccess     = "access"
	TokenTypeRefresh    = "refresh"
	TokenTypeSecretPost = "secret_post"
)

// Claims is the application-side claim shape. The codec adds "exp" and
// "type" itself; Extra carries any additional string claims.
type Claims struct {
	Subject  string
	Username string
	Extra    map[string]string
}

// DecodedToken is the result of a successful Decode.
type DecodedToken struct {
	Subject  string
	Username string
	Type     string
	Extra    map[string]string
}

// TokenCodec signs and verifies HS256 bearer tokens. It is constructed once
// from config and injected wherever tokens are produced or consumed.
type TokenCodec struct {
	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secretPostTTL time.Duration
}

func NewTokenCodec(cfg *config.JWTConfig) *TokenCodec {
	return &TokenCodec{
		secret:        []byte(cfg.Secret),
		accessTTL:     time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		secretPostTTL: time.Duration(cfg.SecretPostTTLMinutes) * time.Minute,
	}
}

func (c *TokenCodec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// Encode signs claims with the given type tag and TTL.
func (c *TokenCodec) Encode(claims Claims, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	mc := jwt.MapClaims{
		"sub":  claims.Subject,
		"type": tokenType,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	if claims.Username != "" {
		mc["username"] = claims.Username
	}
	for k, v := range claims.Extra {
		mc[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString(c.secret)
}

// Decode verifies signature and expiry. Any failure — bad signature, expired,
// malformed, wrong algorithm — yields (nil, false); callers treat all of them
// as unauthenticated.
func (c *TokenCodec) Decode(tokenString string) (*DecodedToken, bool) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	decoded := &DecodedToken{Extra: map[string]string{}}
	for k, v := range mc {
		switch k {
		case "sub":
			decoded.Subject, _ = v.(string)
		case "username":
			decoded.Username, _ = v.(string)
		case "type":
			decoded.Type, _ = v.(string)
		case "exp", "iat":
			// consumed by the parser
		default:
			if s, ok := v.(string); ok {
				decoded.Extra[k] = s
			}
		}
	}
	return decoded, true
}

// NewAccessToken issues a short-lived token carrying subject and username.
func (c *TokenCodec) NewAccessToken(userID, username string) (string, error) {
	return c.Encode(Claims{Subject: userID, Username: username}, TokenTypeAccess, c.accessTTL)
}

// NewRefreshToken issues a long-lived token carrying the subject only.
func (c *TokenCodec) NewRefreshToken(userID string) (string, error) {
	return c.Encode(Claims{Subject: userID}, TokenTypeRefresh, c.refreshTTL)
}

// NewSecretPostToken issues a capability token proving the holder already
// passed the password check for one specific secret post.
func (c *TokenCodec) NewSecretPostToken(postID uint, userID string) (string, error) {
	claims := Claims{
		Subject: userID,
		Extra:   map[string]string{"post_id": strconv.FormatUint(uint64(postID), 10)},
	}
	return c.Encode(claims, TokenTypeSecretPost, c.secretPostTTL)
}

// VerifySecretPostToken checks signature, expiry, type and that the token was
// issued for exactly this post and user, so one user's capability cannot be
// replayed for another post or another user.
func (c *TokenCodec) VerifySecretPostToken(tokenString string, postID uint, userID string) bool {
	decoded, ok := c.Decode(tokenString)
	if !ok || decoded.Type != TokenTypeSecretPost {
		return false
	}
	if decoded.Subject != userID {
		return false
	}
	return decoded.Extra["post_id"] == strconv.FormatUint(uint64(postID), 10)
}
