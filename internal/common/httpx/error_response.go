package httpx

import (
	"net/http"
	"red-social-server/internal/common"

	"github.com/gin-gonic/gin"
)

// WriteServiceError writes a standardized HTTP error response for service-layer errors.
func WriteServiceError(c *gin.Context, err error, fallbackMessage string) {
	if serviceErr, ok := common.AsServiceError(err); ok {
		c.JSON(serviceErrorStatus(serviceErr.Code), gin.H{
			"error":   string(serviceErr.Code),
			"message": serviceErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   string(common.ErrorCodeInternal),
		"message": fallbackMessage,
	})
}

func serviceErrorStatus(code common.ErrorCode) int {
	switch code {
	case common.ErrorCodeValidation, common.ErrorCodeInvalidDimensions:
		return http.StatusBadRequest
	case common.ErrorCodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case common.ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case common.ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case common.ErrorCodeForbidden:
		return http.StatusForbidden
	case common.ErrorCodeLocked:
		return http.StatusLocked
	case common.ErrorCodeConflict:
		return http.StatusConflict
	case common.ErrorCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
