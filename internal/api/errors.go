// ABOUTME: Maps core errors onto HTTP status codes and JSON error bodies
// ABOUTME: Bodies always carry "error"; details and canSmartify appear when useful
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harper/voicenotes/internal/core"
)

// editToSmartify is the conflict hint shown with canSmartify=false
const editToSmartify = "This note has already been smartified. Edit the note to smartify it again."

// statusFor maps an error kind to its HTTP status
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindInvalid, core.KindConflict:
		return http.StatusBadRequest
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	var ce *core.Error
	if !errors.As(err, &ce) {
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	status := statusFor(ce.Kind)
	body := gin.H{"error": ce.Message}
	if details := ce.Details(); details != "" {
		body["details"] = details
	}
	if ce.Kind == core.KindConflict {
		body["message"] = editToSmartify
		body["canSmartify"] = false
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed at %s: %v", c.Request.Method, c.FullPath(), ce.Stage, err)
	}

	c.AbortWithStatusJSON(status, body)
}

func writeBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}
