// Package inputval validates decoded request payloads with
// go-playground/validator and turns failures into per-field messages.
package inputval

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/laag/internal/domain/models"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// custom tags
const (
	notBlankTag = "notblank"
	objectIDTag = "objectid"
	statusTag   = "laag_status"
	privacyTag  = "privacy"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// JSON tag names in messages instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(objectIDTag, objectID)
	_ = validate.RegisterValidation(statusTag, laagStatus)
	_ = validate.RegisterValidation(privacyTag, privacy)

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, objectIDTag, statusTag, privacyTag} {
		_ = validate.RegisterTranslation(tag, translator, noop, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case objectIDTag:
		return fe.Field() + " must be a valid id"
	case statusTag:
		return fe.Field() + " must be one of Planning, Completed, Cancelled"
	case privacyTag:
		return fe.Field() + " must be public or group-only"
	}
	return fe.Error()
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

func objectID(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return primitive.IsValidObjectID(s)
}

func laagStatus(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && models.LaagStatus(s).Valid()
}

func privacy(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && models.Privacy(s).Valid()
}

// Errors maps JSON field names to human-readable messages.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for f, m := range e {
		parts = append(parts, f+": "+m)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v. It returns nil, an Errors value for field failures,
// or the underlying error when v cannot be validated at all.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

// IsValidEmail reports whether s is a single bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}
