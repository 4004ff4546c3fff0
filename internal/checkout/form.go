package checkout

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 12
)

// Form is the contact and shipping data entered at checkout.
type Form struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phonedigits"`
	Address   string `json:"address" validate:"required"`
}

// Normalized returns the form with surrounding whitespace trimmed from every field.
func (f Form) Normalized() Form {
	return Form{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Address:   strings.TrimSpace(f.Address),
	}
}

// CustomerName joins first and last name.
func (f Form) CustomerName() string {
	return f.FirstName + " " + f.LastName
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	if err := v.RegisterValidation("phonedigits", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidPhone reports whether phone has 10 to 12 digits once non-digits are stripped.
func ValidPhone(phone string) bool {
	n := len(PhoneDigits(phone))
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// PhoneDigits strips every non-digit character.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks f (after normalization) and returns a *ValidationError naming the first
// failing field in form order.
func Validate(f Form) error {
	err := formValidator.Struct(f.Normalized())
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Field: "form", Reason: err.Error()}
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &ValidationError{
		Field:  errs[0].Field(),
		Reason: fields[errs[0].Field()],
		Fields: fields,
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phonedigits":
		return "must contain 10 to 12 digits"
	}
	return "is invalid"
}

// sortedFields lists the failing field names for stable log output.
func sortedFields(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
