package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag-name function and aliases to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6,max=72") // bcrypt ignores bytes past 72
	v.RegisterAlias("otp", "len=6,numeric")
	v.RegisterAlias("attendance_type", "oneof=IN OUT")
	v.RegisterAlias("personname", "min=1,max=100")
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return map[string]string{field: "must be a " + ute.Type.String()}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"
	case "email":
		return "must be a valid email"
	case "numeric":
		return "must be numeric"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", param)
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "datetime":
		return "must match datetime format: " + param

	// custom aliases
	case "pwd":
		return "must be between 6 and 72 characters long"
	case "otp":
		return "must be a 6 digit code"
	case "attendance_type":
		return "must be either 'IN' or 'OUT'"
	case "personname":
		return "must be between 1 and 100 characters long"
	}
	if param != "" {
		return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
	}
	return fmt.Sprintf("validation failed for '%s'", tag)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
