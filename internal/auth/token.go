package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID  uint
	Email   string
	IsStaff bool
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager issues and validates HS256 access and refresh tokens. The
// two kinds are signed with different secrets and carry a "type" claim.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *TokenManager) Generate(c Claims) (TokenPair, error) {
	access, err := m.sign(c, tokenTypeAccess, m.accessTTL, m.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(c, tokenTypeRefresh, m.refreshTTL, m.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// AccessToken signs a fresh access token for c.
func (m *TokenManager) AccessToken(c Claims) (string, error) {
	return m.sign(c, tokenTypeAccess, m.accessTTL, m.accessSecret)
}

// ValidateRefreshToken returns the claims of a valid refresh token. The
// caller decides whether the subject may still get an access token.
func (m *TokenManager) ValidateRefreshToken(token string) (Claims, error) {
	return m.validate(token, tokenTypeRefresh, m.refreshSecret)
}

func (m *TokenManager) ValidateAccessToken(token string) (Claims, error) {
	return m.validate(token, tokenTypeAccess, m.accessSecret)
}

func (m *TokenManager) sign(c Claims, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(c.UserID), 10),
		"email":    c.Email,
		"is_staff": c.IsStaff,
		"type":     typ,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *TokenManager) validate(tokenStr, typ string, secret []byte) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if t, _ := claims["type"].(string); t != typ {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return Claims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	staff, _ := claims["is_staff"].(bool)

	return Claims{UserID: uint(id), Email: email, IsStaff: staff}, nil
}
