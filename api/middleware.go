package api

import (
	"net/http"
	"slices"
	"strings"
	"tixgate/db"
	"tixgate/service/security"
	"tixgate/util"

	"github.com/gin-gonic/gin"
)

const authorizationPayloadKey = "authorization_payload"

// CORS middleware
func (server *Server) CORSMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		// Handle preflight and return immediately so Gin doesn't respond 404 for OPTIONS
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}

		ctx.Next()
	}
}

// Extract and verify the bearer token of a request. Returns nil without
// error when no Authorization header is present.
func (server *Server) bearerClaims(ctx *gin.Context) (*security.CustomClaims, error) {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if header == "" {
		return nil, nil
	}

	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return nil, security.ErrMalformedHeader
	}

	claims, err := server.jwtService.VerifyToken(fields[1])
	if err != nil {
		return nil, err
	}

	if claims.TokenType != security.AccessToken {
		return nil, security.ErrWrongTokenType
	}

	return claims, nil
}

// AuthMiddleware requires a valid access token, and when roles are given,
// one of those roles. Claims are stored in the request context for handlers.
func (server *Server) AuthMiddleware(roles ...db.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := server.bearerClaims(ctx)
		if err != nil || claims == nil {
			util.LOGGER.Warn("rejected request with missing or invalid token",
				"path", ctx.FullPath(), "error", err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{"Missing or invalid access token"})
			return
		}

		if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{"You don't have permission to perform this request"})
			return
		}

		ctx.Set(authorizationPayloadKey, claims)
		ctx.Next()
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present but
// lets anonymous requests through. A present-but-invalid token is still an
// error; silently downgrading it to anonymous would mask expired sessions.
func (server *Server) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := server.bearerClaims(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{"Invalid access token"})
			return
		}

		if claims != nil {
			ctx.Set(authorizationPayloadKey, claims)
		}
		ctx.Next()
	}
}

// Claims of the current request, or nil for anonymous requests
func requestClaims(ctx *gin.Context) *security.CustomClaims {
	value, exists := ctx.Get(authorizationPayloadKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*security.CustomClaims)
	if !ok {
		return nil
	}
	return claims
}
