package bank

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidQuestion = errors.New("invalid question")

// FieldError is one failed rule on a question record.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists everything wrong with one record.
type ValidationError struct {
	ID     string       `json:"id"`
	Index  int          `json:"index"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Rule+")")
	}
	return fmt.Sprintf("question %d (%q): %s", e.Index, e.ID, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidQuestion }

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateAnswerFields, Record{})
	return v
}

// validateAnswerFields requires exactly one of expected_answer and
// valid_responses. Dynamic questions may carry neither until their label
// has been computed.
func validateAnswerFields(sl validator.StructLevel) {
	r := sl.Current().Interface().(Record)
	hasExpected := len(r.ExpectedAnswer) > 0 && string(r.ExpectedAnswer) != "null"
	hasResponses := len(r.ValidResponses) > 0
	switch {
	case hasExpected && hasResponses:
		sl.ReportError(r.ValidResponses, "valid_responses", "ValidResponses", "excluded_with_expected_answer", "")
	case !hasExpected && !hasResponses && r.Type != "dynamic_algo":
		sl.ReportError(r.ExpectedAnswer, "expected_answer", "ExpectedAnswer", "required_without_valid_responses", "")
	}
}

func toValidationError(index int, r Record, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("question %d: %w", index, err)
	}
	ve := &ValidationError{ID: r.ID, Index: index}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return ve
}
