package shared

import (
	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyIdentity  = "identity"
	ContextKeyRequestID = "request_id"
)

// SetIdentity 写入鉴权中间件解析出的调用者身份
func SetIdentity(c *gin.Context, identity authn.Identity) {
	c.Set(ContextKeyIdentity, identity)
}

// IdentityFrom 读取调用者身份，不存在时返回 false
func IdentityFrom(c *gin.Context) (authn.Identity, bool) {
	value, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return authn.Identity{}, false
	}
	switch v := value.(type) {
	case authn.Identity:
		return v, true
	case *authn.Identity:
		if v != nil {
			return *v, true
		}
	}
	return authn.Identity{}, false
}

// RequireIdentity 读取调用者身份，缺失时直接返回 401
func RequireIdentity(c *gin.Context) (authn.Identity, bool) {
	identity, ok := IdentityFrom(c)
	if !ok {
		RespondErrorWithMsg(c, response.CodeUnauthorized, "unauthorized", nil)
		return authn.Identity{}, false
	}
	return identity, true
}
