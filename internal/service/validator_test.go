package service

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type timeRangeFixture struct {
	Single string   `validate:"required,timerange"`
	Many   []string `validate:"omitempty,dive,timerange"`
	Month  string   `validate:"omitempty,yearmonth"`
}

func TestValidatorTimeRange(t *testing.T) {
	validate := NewValidator()

	cases := []struct {
		name  string
		input timeRangeFixture
		ok    bool
	}{
		{"valid", timeRangeFixture{Single: "Saturday 9:00 AM - 12:00 PM"}, true},
		{"valid list", timeRangeFixture{Single: "Monday 4:00 PM - 5:30 PM", Many: []string{"Sunday 9:00 AM - 10:00 AM", "Friday 8:00 PM - 9:00 PM"}}, true},
		{"missing day", timeRangeFixture{Single: "9:00 AM - 12:00 PM"}, false},
		{"unknown day", timeRangeFixture{Single: "Funday 9:00 AM - 12:00 PM"}, false},
		{"reversed", timeRangeFixture{Single: "Saturday 12:00 PM - 9:00 AM"}, false},
		{"bad minutes", timeRangeFixture{Single: "Saturday 9:75 AM - 12:00 PM"}, false},
		{"bad list entry", timeRangeFixture{Single: "Saturday 9:00 AM - 12:00 PM", Many: []string{"Sunday noon"}}, false},
		{"valid month", timeRangeFixture{Single: "Saturday 9:00 AM - 12:00 PM", Month: "2024-02"}, true},
		{"bad month", timeRangeFixture{Single: "Saturday 9:00 AM - 12:00 PM", Month: "2024-13"}, false},
		{"short month", timeRangeFixture{Single: "Saturday 9:00 AM - 12:00 PM", Month: "2024-2"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.input)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatorRegistrationFailurePanics(t *testing.T) {
	validate := validator.New()
	assert.Panics(t, func() {
		mustRegister(validate, "", func(validator.FieldLevel) bool { return true })
	})
	assert.Panics(t, func() {
		mustRegister(validate, "timerange", nil)
	})
}

func TestValidatorDomainTagsOnSharedInstance(t *testing.T) {
	validate := NewValidator()
	assert.NotPanics(t, func() {
		validate = withDomainTags(validate)
	})
	assert.NoError(t, validate.Struct(timeRangeFixture{Single: "Saturday 9:00 AM - 12:00 PM"}))
}
