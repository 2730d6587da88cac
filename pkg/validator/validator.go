package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the {"errors": [...]} list returned on a failed validation.
type FieldError struct {
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// Errors is a field error list produced after binding, for rules that can
// only be checked once the input has been cleaned.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Msg)
	}
	return strings.Join(msgs, "; ")
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// Register installs the custom rules and json field naming on gin's validator engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("date", validateDate); err != nil {
		return err
	}
	return v.RegisterValidation("datebefore", validateDateBefore)
}

func validateDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := ParseDate(value)
	return err == nil
}

// validateDateBefore passes when the sibling field named by the param is empty,
// or when this field is strictly earlier than it.
func validateDateBefore(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	other := parent.FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String || other.String() == "" {
		return true
	}

	from, err := ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	to, err := ParseDate(other.String())
	if err != nil {
		return true
	}
	return from.Before(to)
}

// FormatValidationErrors turns a binding error into the structured field error list.
func FormatValidationErrors(err error) []FieldError {
	var fieldErrs Errors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		out := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			out = append(out, FieldError{
				Value:    fe.Value(),
				Msg:      getFieldErrorMessage(fe),
				Param:    fe.Field(),
				Location: "body",
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Msg:      fmt.Sprintf("%s has an invalid type", getFieldName(typeErr.Field)),
			Param:    typeErr.Field,
			Location: "body",
		}}
	}

	return []FieldError{{Msg: "Invalid request body", Location: "body"}}
}

// Single wraps one message in the field error list shape.
func Single(msg string) []FieldError {
	return []FieldError{{Msg: msg}}
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		if fe.Field() == "from" {
			return "From date is required and needs to be from the past"
		}
		if fe.Field() == "password" {
			return "Please enter a password with 6 or more characters"
		}
		return fmt.Sprintf("%s is required", field)
	case "datebefore":
		return "From date is required and needs to be from the past"
	case "date":
		return fmt.Sprintf("%s must be a valid date", field)
	case "email":
		return "Please include a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s is required", field)
		}
		if fe.Field() == "password" {
			return "Please enter a password with 6 or more characters"
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"status":         "Status",
		"skills":         "Skills",
		"title":          "Title",
		"company":        "Company",
		"school":         "School",
		"degree":         "Degree",
		"fieldofstudy":   "Field of study",
		"from":           "From date",
		"to":             "To date",
		"name":           "Name",
		"email":          "Email",
		"password":       "Password",
		"text":           "Text",
		"website":        "Website",
		"githubusername": "GitHub username",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
