package public

import (
	"github.com/luxdecor-shop/internal/authn"
	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	handlershared.RespondError(c, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func getIdentity(c *gin.Context) (authn.Identity, bool) {
	return handlershared.RequireIdentity(c)
}
