package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/coursehub/internal/apperrors"
	"github.com/farellandr/coursehub/internal/auth"
	"github.com/farellandr/coursehub/internal/helpers"
	"github.com/farellandr/coursehub/internal/logger"
	"github.com/farellandr/coursehub/internal/models"
	"github.com/farellandr/coursehub/internal/policy"
)

const principalKey = "principal"

// AccountLookup loads the account behind a token subject.
type AccountLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate resolves a Bearer access token into a policy.Principal. A
// request without an Authorization header continues anonymously; a bad
// token is rejected. When accounts is set the principal is built from the
// stored user and disabled or deleted accounts are rejected.
func Authenticate(tokens *auth.TokenManager, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			helpers.AbortWithAppError(c, apperrors.ErrInvalidToken.WithMessage("Authorization header must be 'Bearer <token>'"))
			return
		}

		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			helpers.AbortWithAppError(c, apperrors.ErrInvalidToken)
			return
		}

		principal := &policy.Principal{UserID: claims.UserID, Email: claims.Email, IsStaff: claims.IsStaff}
		if accounts != nil {
			user, err := accounts.FindByID(c.Request.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					err = apperrors.ErrInvalidToken
				}
				helpers.AbortWithAppError(c, err)
				return
			}
			if !user.IsActive {
				helpers.AbortWithAppError(c, apperrors.ErrInvalidToken.WithMessage("User account is disabled."))
				return
			}
			principal = &policy.Principal{UserID: user.ID, Email: user.Email, IsStaff: user.IsStaff}
		}

		c.Set(principalKey, principal)
		ctx := logger.WithUserID(c.Request.Context(), strconv.FormatUint(uint64(claims.UserID), 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			helpers.AbortWithAppError(c, apperrors.ErrAuthenticationRequired)
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the authenticated caller, or nil.
func CurrentPrincipal(c *gin.Context) *policy.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := v.(*policy.Principal)
	return p
}

