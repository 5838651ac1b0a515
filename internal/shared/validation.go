package shared

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors flattens validator errors into field -> tag messages. Errors of
// other types are reported under "general".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			out[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
		}
		return out
	}
	out["general"] = err.Error()
	return out
}
