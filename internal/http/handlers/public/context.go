package public

import (
	"github.com/devfolio-next/internal/constants"
	handlershared "github.com/devfolio-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	return handlershared.BindJSON(c, dest)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetUserID(c)
}

func getRequestID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyRequestID)
}
