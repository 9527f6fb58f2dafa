package utils

import "github.com/gin-gonic/gin"

// JSONError writes the error envelope every handler uses:
// {"error": {"code": "error.x", "message": "..."}}.
func JSONError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// AbortWithError is JSONError for middleware.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
