// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/talentflow/tf-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("siren", validateSiren)
	validate.RegisterValidation("third_party_type", validateThirdPartyType)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateSiren(fl validator.FieldLevel) bool {
	return models.ValidateSiren(fl.Field().String()) == nil
}

func validateThirdPartyType(fl validator.FieldLevel) bool {
	switch models.ThirdPartyType(fl.Field().String()) {
	case models.ThirdPartyTypeFreelance, models.ThirdPartyTypeSubcontractor, models.ThirdPartyTypeEmployee:
		return true
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "siren":
		return "SIREN must be 9 digits with a valid checksum"
	case "third_party_type":
		return "Type must be one of freelance, sous_traitant, salarie"
	default:
		return e.Field() + " is invalid"
	}
}
