package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"travelfeed/internal/errors"
	"travelfeed/internal/middleware"
)

// MessageResponse is the body of operations that only confirm success.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError converts a service error into the JSON error body. Unexpected errors are
// logged and reported generically.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// validationError reports failed struct validation by field name. Anything else gets a
// generic message so Go type names never reach the client.
func validationError(err error) error {
	msg := "invalid request"
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fieldMessage(fe))
		}
		msg = strings.Join(parts, " ")
	}
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: msg,
		Code:  "VALIDATION_ERROR",
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", fe.Field())
	case "excludes":
		return fmt.Sprintf("%s must not contain '%s'.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}

func invalidParam(name string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: fmt.Sprintf("%s must be a positive integer.", name),
		Code:  "VALIDATION_ERROR",
	})
}

func invalidBody() error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "VALIDATION_ERROR",
	})
}

// currentUser returns the id set by the auth middleware.
func currentUser(c echo.Context) (uint, error) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: errors.ErrMissingCredential.Error(),
			Code:  "MISSING_CREDENTIAL",
		})
	}
	return id, nil
}
