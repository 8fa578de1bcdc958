package applications

import (
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/wuwenbin0122/applytrackr/internal/models"
)

// StatusTag validates a string or models.ApplicationStatus against the enum.
const StatusTag = "application_status"

// RegisterValidations installs the custom tags on v. Safe to call repeatedly.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(StatusTag, validStatus)
}

func validStatus(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return models.ApplicationStatus(field.String()).Valid()
}
