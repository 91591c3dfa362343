package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message, "success": false})
}

// internalError logs the cause and answers 500 "<operation> failed"
func internalError(c *gin.Context, logger *zap.Logger, operation string, err error) {
	logger.Error(operation+" failed",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	respondError(c, http.StatusInternalServerError, operation+" failed")
}

// respondProviderError answers with the provider code and its user-facing message
func respondProviderError(c *gin.Context, logger *zap.Logger, operation string, err error) {
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		internalError(c, logger, operation, err)
		return
	}
	c.JSON(providerStatus(pe.Code), gin.H{
		"message": pe.Message(),
		"code":    pe.Code,
		"success": false,
	})
}

func providerStatus(code string) int {
	switch code {
	case domain.CodeTooManyRequests, domain.CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case domain.CodeNetworkRequestFailed:
		return http.StatusBadGateway
	case domain.CodeOperationNotAllowed:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// bodyTooLarge reports whether err came from a body cut off by middleware.BodyLimit
func bodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func respondTooLarge(c *gin.Context) {
	respondError(c, http.StatusRequestEntityTooLarge, "File too large")
}

func invalidBody(c *gin.Context) {
	respondError(c, http.StatusBadRequest, "Invalid request body")
}
