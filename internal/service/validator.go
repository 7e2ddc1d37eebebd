package service

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/coaching-center-api/internal/timeslot"
)

// NewValidator returns a validator with the domain tags registered.
// Slices of ranges are checked with `dive,timerange`.
func NewValidator() *validator.Validate {
	return withDomainTags(validator.New())
}

// withDomainTags registers the custom tags on validate, creating one when nil.
func withDomainTags(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	mustRegister(validate, "timerange", func(fl validator.FieldLevel) bool {
		_, err := timeslot.ParseDayRangeStrict(fl.Field().String())
		return err == nil
	})
	mustRegister(validate, "yearmonth", func(fl validator.FieldLevel) bool {
		return validMonth(fl.Field().String())
	})
	return validate
}

// mustRegister panics when a tag cannot be registered.
func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func validMonth(value string) bool {
	if len(value) != len("2006-01") {
		return false
	}
	_, err := time.Parse("2006-01", value)
	return err == nil
}
