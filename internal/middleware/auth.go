package middleware

import (
	"net/http"
	"strings"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for user info
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

// AuthRequired validates the Bearer access token, rejects denylisted tokens and
// injects the caller into both the gin context and the request context.
func AuthRequired(tokens service.TokenProvider, denylist service.CacheClient, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) != "" {
			// already authenticated by OptionalAuth
			c.Next()
			return
		}
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		if msg, ok := authenticate(c, authz, tokens, denylist, log); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError(msg))
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets anonymous
// requests through. A present but invalid token is still rejected.
func OptionalAuth(tokens service.TokenProvider, denylist service.CacheClient, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.Next()
			return
		}
		if msg, ok := authenticate(c, authz, tokens, denylist, log); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError(msg))
			return
		}
		c.Next()
	}
}

// StaffOnly must run after AuthRequired.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRole) != string(service.RoleStaff) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("staff only"))
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, authz string, tokens service.TokenProvider, denylist service.CacheClient, log *zap.Logger) (string, bool) {
	token, ok := ExtractBearerToken(authz)
	if !ok {
		return "invalid Authorization header", false
	}
	if token == "" {
		return "empty token", false
	}

	ctx := c.Request.Context()
	claims, err := tokens.ParseAndValidateAccess(ctx, token)
	if err != nil {
		log.Debug("token rejected", zap.Error(err))
		return "invalid token", false
	}
	revoked, err := denylist.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		log.Warn("denylist lookup failed", zap.Error(err))
	}
	if revoked {
		return "token has been revoked", false
	}

	role := service.Role(claims.Role)
	c.Set(CtxUserID, claims.UserID.String())
	c.Set(CtxUserRole, string(role))
	ctx = service.WithUserID(ctx, claims.UserID)
	ctx = service.WithRole(ctx, role)
	c.Request = c.Request.WithContext(ctx)
	return "", true
}

// ExtractBearerToken pulls the token out of an Authorization header and tolerates
// stray quotes and trailing junk:
//   - "Bearer abc.def.ghi"
//   - "Bearer \"abc.def.ghi\""
//   - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.Trim(strings.TrimSpace(t[:i]), " \"'")
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return strings.Trim(t, " \"'"), true
}
