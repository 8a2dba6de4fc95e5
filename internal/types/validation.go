package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipebox/backend/internal/apperr"
)

// validate checks structs decoded outside of gin's binding. It reads the same
// `binding` tags gin does.
var validate = newValidator()

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidators(v)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	registerValidators(v)
	return v
}

func registerValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "multipleof", validateMultipleOf)
	mustRegister(v, "strongpassword", validateStrongPassword)
}

// mustRegister panics when tag cannot be registered.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("types: register %s validator: %v", tag, err))
	}
}

// validateMultipleOf accepts integers divisible by the tag parameter, e.g. multipleof=5.
func validateMultipleOf(fl validator.FieldLevel) bool {
	n, err := strconv.ParseInt(fl.Param(), 10, 64)
	if err != nil || n == 0 {
		return false
	}
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int()%n == 0
	default:
		return false
	}
}

// StrongPassword reports whether pw is longer than 8 characters and mixes at
// least three of upper case, lower case, digits and other characters.
func StrongPassword(pw string) bool {
	if len(pw) <= 8 {
		return false
	}
	var upper, lower, digit, other bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case r != '_' && !unicode.IsLetter(r):
			other = true
		}
	}
	classes := 0
	for _, ok := range []bool{upper, lower, digit, other} {
		if ok {
			classes++
		}
	}
	return classes >= 3
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return StrongPassword(fl.Field().String())
}

// ValidateStruct runs the binding tags of s and converts failures to a *apperr.ValidationError.
func ValidateStruct(s interface{}) error {
	return translate(validate.Struct(s), "")
}

// checkVar validates a single value against tag, recording problems under field.
func checkVar(ve *apperr.ValidationError, field string, value interface{}, tag string) {
	if err := validate.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve.Add(field, message(verrs[0]))
			return
		}
		ve.Add(field, err.Error())
	}
}

// TranslateBindingError turns errors from gin's ShouldBind* or ValidateStruct
// into a *apperr.ValidationError.
func TranslateBindingError(err error) error {
	return translate(err, "")
}

func translate(err error, prefix string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ve := &apperr.ValidationError{}
		for _, fe := range verrs {
			ve.Add(prefix+fieldPath(fe), message(fe))
		}
		return ve
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperr.NewValidationError(prefix+field, fmt.Sprintf("must be of type %s", typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.NewValidationError("body", "malformed JSON")
	}

	if apperr.IsValidation(err) {
		return err
	}

	return apperr.NewValidationError("body", err.Error())
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "multipleof":
		return "must be a multiple of " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "strongpassword":
		return "must be longer than 8 characters and contain three of: upper case, lower case, digit, symbol"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// decodeObject decodes a JSON object into its raw members. Anything other than
// an object is a validation error.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, translate(err, "")
	}
	if raw == nil {
		return map[string]json.RawMessage{}, nil
	}
	return raw, nil
}

// checkKeys flags forbidden and unknown members of raw.
func checkKeys(ve *apperr.ValidationError, raw map[string]json.RawMessage, allowed, forbidden []string) {
	for key := range raw {
		switch {
		case containsKey(forbidden, key):
			ve.Add(key, "is not allowed")
		case !containsKey(allowed, key):
			ve.Add(key, "is not a recognized field")
		}
	}
}

// decodeMember unmarshals raw[key] into dst when present. It reports whether
// the member was supplied.
func decodeMember(ve *apperr.ValidationError, raw map[string]json.RawMessage, key string, dst interface{}) bool {
	msg, ok := raw[key]
	if !ok {
		return false
	}
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		ve.Add(key, "must not be null")
		return false
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			ve.Add(key, fmt.Sprintf("must be of type %s", typeErr.Type.String()))
		} else {
			ve.Add(key, "is malformed")
		}
		return false
	}
	return true
}

func newProblems() *apperr.ValidationError {
	return &apperr.ValidationError{}
}

func errEmptyBody() error {
	return apperr.NewValidationError("body", "cannot send an empty request object")
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}
