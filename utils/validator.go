package utils

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// ValidateStruct validates a struct and returns validator.ValidationErrors on failure.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidationMessages turns a ValidateStruct error into field -> message.
// Non-validation errors are reported under "body".
func ValidationMessages(err error) map[string]string {
	messages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			messages[e.Field()] = formatValidationError(e)
		}
		return messages
	}
	messages["body"] = err.Error()
	return messages
}

// ValidationErrorResponse sends a 400 envelope listing the invalid fields.
func ValidationErrorResponse(c *gin.Context, message string, fields map[string]string) {
	c.JSON(http.StatusBadRequest, NewResponse(http.StatusBadRequest, message, fields))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
