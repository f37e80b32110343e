package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthGET is the liveness probe.
func HandleHealthGET() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
