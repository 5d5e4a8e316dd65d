package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the tool schema.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(ScrapeResult)
		if (r.Markdown == nil) == (r.HTML == nil) {
			sl.ReportError(r.Markdown, "markdown", "Markdown", "markdown_xor_html", "")
		}
	}, ScrapeResult{})

	return v
}

// ValidateInput checks a tool input struct and returns an INVALID_INPUT
// ScrapeError describing the first failing field.
func ValidateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return NewScrapeError(ErrCodeInvalidInput, describe(err), err)
	}
	return nil
}

// ValidateOutput checks an assembled tool result. Failures are reported as
// OUTPUT_FORMAT_INVALID and never echo the offending values.
func ValidateOutput(v any) error {
	if err := validate.Struct(v); err != nil {
		return NewScrapeError(ErrCodeOutputFormat, "result failed output validation: "+fieldsOf(err), nil)
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}

func fieldsOf(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid structure"
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Namespace())
	}
	return strings.Join(names, ", ")
}
