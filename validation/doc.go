// Package validation validates announcement and configuration structs using
// go-playground/validator struct tags.
//
//	type ProviderInfo struct {
//	    UUID string `json:"uuid" validate:"required"`
//	    RDNS string `json:"rdns,omitempty" validate:"omitempty,rdns"`
//	}
//	err := validation.Validate(info)
//
// Failures are returned as an *errors.AppError with code INVALID_INPUT and a
// "fields" detail listing every offending field.
package validation
