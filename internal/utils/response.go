package utils

import (
	"github.com/gin-gonic/gin"
)

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// SendSuccessResponse sends a standardized success response
func SendSuccessResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

// SendListResponse sends a standardized list response with a row count
func SendListResponse(c *gin.Context, status int, data interface{}, count int) {
	c.JSON(status, gin.H{"data": data, "count": count})
}
