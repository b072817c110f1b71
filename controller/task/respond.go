package task

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tasky/apperr"
	"tasky/middleware"
)

// respondError writes the error body for err and records err on the context
// for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		verr *apperr.ValidationError
		nerr *apperr.NotFoundError
		uerr *apperr.StoreUnavailableError
	)
	switch {
	case errors.As(err, &verr):
		body := gin.H{"status": false, "error": "validation", "message": verr.Error()}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"status": false, "error": "not_found", "message": nerr.Error()})
	case errors.As(err, &uerr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": false, "error": "store_unavailable", "message": "Task store is unavailable, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "error": "internal", "message": "Internal server error"})
	}
}

// bindError turns a gin binding failure into a ValidationError naming the field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		return apperr.Validation(field, "failed %q validation", verrs[0].Tag())
	}
	return apperr.Validation("body", "malformed request: %v", err)
}

func actor(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
