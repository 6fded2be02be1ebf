package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	authService "github.com/allisson/keyvault/internal/auth/service"
	authUseCase "github.com/allisson/keyvault/internal/auth/usecase"
	"github.com/allisson/keyvault/internal/httputil"
)

// Header names carrying credentials.
const (
	// AdminTokenHeader is the alternative to "Authorization: Bearer <token>".
	AdminTokenHeader = "X-API-Token"
	// CallerIdentityHeader carries the release caller identity (a contract address).
	CallerIdentityHeader = "X-Contract-Address"
	// CallerSignatureHeader carries the release caller signature.
	CallerSignatureHeader = "X-Signature"
)

// AdminAuthMiddleware authenticates admin requests.
//
// The token is read from "Authorization: Bearer <token>" (case-insensitive scheme) or, when that
// header is absent, from X-API-Token. It is hashed with tokenService.HashToken and resolved via
// adminTokenUseCase.Authenticate. Missing, malformed, unknown and expired tokens all produce the
// same 401 response. On success the token is stored in the request context (see GetAdminToken).
func AdminAuthMiddleware(
	adminTokenUseCase authUseCase.AdminTokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, ok := extractAdminToken(c)
		if !ok {
			logger.Debug("admin authentication failed: missing or malformed token")
			httputil.HandleErrorGin(c, authDomain.ErrInvalidAdminToken, logger)
			c.Abort()
			return
		}

		token, err := adminTokenUseCase.Authenticate(c.Request.Context(), tokenService.HashToken(plainToken))
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAdminToken(c.Request.Context(), token))

		logger.Debug("admin authentication successful", slog.String("token_id", token.ID.String()))

		c.Next()
	}
}

func extractAdminToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		return token, token != ""
	}

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	return token, token != ""
}

// CallerAuthMiddleware authenticates release callers from the X-Contract-Address and X-Signature
// headers using callerAuthenticator. On success the caller is stored in the request context
// (see GetCaller); otherwise the request is answered with 401.
func CallerAuthMiddleware(
	callerAuthenticator authService.CallerAuthenticator,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := callerAuthenticator.Authenticate(
			c.Request.Context(),
			c.GetHeader(CallerIdentityHeader),
			c.GetHeader(CallerSignatureHeader),
		)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), caller))
		c.Next()
	}
}
