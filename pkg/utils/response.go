package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every API answer is HTTP 200 with a success flag; callers branch on the
// flag, not on the status code.

func RespondSuccess(c *gin.Context, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func RespondFailure(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": false, "message": message})
}

func AbortWithFailure(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusOK, gin.H{"success": false, "message": message})
}
