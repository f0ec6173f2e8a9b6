package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/render-bench/internal/metrics"
	"github.com/rickgao/render-bench/internal/model"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code        int                `json:"code"`
	Message     string             `json:"message"`
	Description string             `json:"description,omitempty"`
	Errors      []model.FieldError `json:"errors,omitempty"`
}

// NewErrorResponse builds an ErrorResponse using the status text as message.
func NewErrorResponse(code int, description string) ErrorResponse {
	return ErrorResponse{
		Code:        code,
		Message:     http.StatusText(code),
		Description: description,
	}
}

// abortWithError writes err as JSON. Validation failures become 422 with the
// per-field problems; anything else becomes a 500 without internals.
func abortWithError(c *gin.Context, endpoint string, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		metrics.ValidationErrorsTotal.WithLabelValues(endpoint).Inc()
		resp := NewErrorResponse(http.StatusUnprocessableEntity, verr.Error())
		resp.Errors = verr.Fields
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, resp)
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError,
		NewErrorResponse(http.StatusInternalServerError, "internal error"))
}

// bindError converts a JSON decoding failure into a validation error so that
// malformed bodies and type mismatches share the 422 path.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg := "has the wrong type"
		switch typeErr.Type.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			msg = "must be an integer"
		case reflect.Float32, reflect.Float64:
			msg = "must be a number"
		case reflect.String:
			msg = "must be a string"
		}
		return model.NewValidationError(typeErr.Field, msg)
	}
	return model.NewValidationError("body", "must be valid JSON")
}
