package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bloom-backend/internal/http/response"
	"github.com/yungbote/bloom-backend/internal/platform/ctxutil"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/platform/session"
)

var (
	errMissingSession = errors.New("missing or invalid session")
	errAdminOnly      = errors.New("admin access required")
)

type AuthMiddleware struct {
	log      *logger.Logger
	sessions *session.Manager
}

func NewAuthMiddleware(log *logger.Logger, sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), sessions: sessions}
}

// RequireAuth opens the session cookie (or bearer value) and attaches the caller to the context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		value := extractSession(c)
		if value == "" {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingSession)
			return
		}
		id, err := am.sessions.Open(value)
		if err != nil {
			am.log.Debug("session rejected", "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID:    id.UserID,
			CompanyID: id.CompanyID,
			Role:      id.Role,
			SessionID: id.SessionID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingSession)
			return
		}
		if !rd.IsAdmin() {
			response.RespondError(c, http.StatusForbidden, "forbidden", errAdminOnly)
			return
		}
		c.Next()
	}
}

func extractSession(c *gin.Context) string {
	if v, err := c.Cookie(session.CookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
