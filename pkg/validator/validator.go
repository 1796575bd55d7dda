package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	requiredTag  = "required"
	requiredText = "this field is required"
	eqFieldTag   = "eqfield"
	eqFieldText  = "{0} does not match"
)

var (
	translator ut.Translator
	initOnce   sync.Once
)

func englishTranslator() ut.Translator {
	initOnce.Do(func() {
		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
	})
	return translator
}

// Init registers English messages and form-tag field names on validate.
func Init(validate *validator.Validate) {
	trans := englishTranslator()
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	registerTranslation(validate, trans, requiredTag, requiredText)
	registerTranslation(validate, trans, eqFieldTag, eqFieldText)
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldErrors turns a validation error into form-field → message pairs.
// Errors that are not validation errors are reported under the "" key.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if _, exists := out[fe.Field()]; exists {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// FormatValidationError joins all field messages into one line.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fe.Field()+": "+message(fe))
	}
	return strings.Join(messages, "; ")
}

func message(fe validator.FieldError) string {
	return fe.Translate(englishTranslator())
}
