package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"senorito-pos/internal/apperr"
	"senorito-pos/internal/orders"
)

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// fail maps the error taxonomy onto HTTP statuses. Persistence and unknown
// errors surface a generic message; the detail stays in the server log.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperr.KindStateConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperr.KindAuthorization:
		status = http.StatusForbidden
		message = err.Error()
	}

	body := gin.H{
		"success": false,
		"error":   message,
	}
	if errors.Is(err, orders.ErrNoOpenShift) {
		body["requiresOpenShift"] = true
	}
	c.JSON(status, body)
}

func parseIDParam(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validationf("invalid %s", param)
	}
	return id, nil
}

func parseIntQuery(c *gin.Context, param string, fallback int) int {
	str := c.Query(param)
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil || val < 1 {
		return fallback
	}
	return val
}
