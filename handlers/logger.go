package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fundigo/utils"
)

// getLogger retrieves the request-scoped Zap logger stashed on the Gin
// context by middleware, falling back to the shared logger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}
