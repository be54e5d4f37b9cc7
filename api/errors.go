package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// writeError maps the two user-facing error kinds onto 400 and 404. Anything
// else is logged and reported as an opaque 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Message})
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

// fieldPath drops the request struct name, so nested fields read as
// passengers[0].name.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt", "min":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "city":
		return fmt.Sprintf("unknown city %v", fe.Value())
	case "meal":
		return fmt.Sprintf("unknown meal type %v", fe.Value())
	case "triptype":
		return "must be ONE_WAY or ROUND_TRIP"
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}
