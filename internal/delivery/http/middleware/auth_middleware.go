package middleware

import (
	"strings"

	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ContextKeyUserID is where Authenticate stores the caller's user ID.
const ContextKeyUserID = "userID"

// AuthMiddleware provides middleware for JWT authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the "Authorization: <tokenType> <token>" header and
// stores the token subject as the caller's user ID.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrUnauthorized.WithDetails("authorization header is missing")
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || tokenString == "" || !strings.EqualFold(scheme, m.tokenSvc.TokenType()) {
			return domainerrors.ErrUnauthorized.WithDetails("authorization scheme must be " + m.tokenSvc.TokenType())
		}

		claims, err := m.tokenSvc.Decode(tokenString)
		if err != nil {
			return errors.WithStack(err)
		}

		subject, ok := claims.Subject()
		if !ok {
			return domainerrors.ErrInvalidToken.WithDetails("token subject is missing")
		}
		userID, err := uuid.Parse(subject)
		if err != nil {
			return domainerrors.ErrInvalidToken.WithDetails("token subject is not a user id")
		}

		c.Set(ContextKeyUserID, userID)

		return next(c)
	}
}

// UserID returns the user ID set by Authenticate.
func UserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domainerrors.ErrUnauthorized
	}

	return userID, nil
}
