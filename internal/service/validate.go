package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// firstFailure reports the first failing field of a validation error, which
// is what clients get back in the error message.
func firstFailure(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Sprintf("field %s failed on %s", f.Field(), f.Tag())
	}
	return err.Error()
}
