package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/authz"
	"github.com/luxdecor-shop/internal/config"
	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"
	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = handlershared.ContextKeyRequestID
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Authorization",
			"X-Requested-With",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if identity, ok := handlershared.IdentityFrom(c); ok {
			fields = fields.With("user_id", identity.UserID, "role", identity.Role)
		}
		if len(c.Errors) > 0 {
			fields.Errorw("request", "errors", c.Errors.String())
			return
		}
		fields.Infow("request")
	}
}

// MetricsMiddleware 按路由模板记录请求耗时
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// AuthMiddleware 校验身份服务签发的 Bearer 令牌并写入调用者身份
func AuthMiddleware(tokens *authn.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || !tokens.Configured() {
			logger.Errorw("auth_token_manager_unconfigured", "path", c.Request.URL.Path)
			response.Unauthorized(c, "jwt secret not configured")
			c.Abort()
			return
		}

		tokenString, err := authn.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			msg := "invalid authorization header"
			if errors.Is(err, authn.ErrTokenMissing) {
				msg = "authorization header missing"
			}
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}

		identity, err := tokens.Parse(tokenString)
		if err != nil || identity == nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		handlershared.SetIdentity(c, *identity)
		c.Next()
	}
}

// RequirePermission 按角色校验路由模板 + 方法的访问权限
func RequirePermission(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("rbac_service_unavailable")
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}

		identity, ok := handlershared.IdentityFrom(c)
		if !ok {
			response.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(identity.Role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("rbac_enforce_failed",
				"user_id", identity.UserID,
				"role", identity.Role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("rbac_permission_denied",
				"user_id", identity.UserID,
				"role", identity.Role,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}

		c.Next()
	}
}
