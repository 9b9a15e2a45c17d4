package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/okhomenko/plantkeeper/internal/dto"
)

// respond writes the uniform success envelope.
func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondPaginated writes a success envelope with a pagination block.
func respondPaginated(c *gin.Context, message string, data any, pagination *dto.Pagination) {
	c.JSON(http.StatusOK, dto.Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// respondError writes the failure envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Response{
		Success: false,
		Message: message,
	})
}

// respondBindError turns a gin binding failure into a 400 with per-field
// details when the error came from validator.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: fieldErrorMessage(fe),
				Value:   fe.Value(),
			})
		}
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "Validation failed",
			Errors:  fields,
		})
		return
	}

	respondError(c, http.StatusBadRequest, "Invalid request body")
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// currentUserID reads the user id placed into the context by AuthMiddleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		respondError(c, http.StatusUnauthorized, "User ID not found in context")
		return "", false
	}
	return userID.(string), true
}
