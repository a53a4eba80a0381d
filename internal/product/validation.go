package product

import (
	"errors"
	"reflect"
	"strings"

	"product_api/internal/binding"

	"github.com/go-playground/validator/v10"
)

// FieldError mirrors one entry of the 400 "errors" array.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

var fieldMessages = map[string]string{
	"name":  "name is required",
	"price": "price must be positive",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// ParseInput coerces a decoded body into an Input and reports every field
// that fails validation. Non-numeric prices count as invalid.
func ParseInput(raw map[string]any) (Input, []FieldError) {
	in := Input{Name: binding.String(raw["name"])}
	if price, ok := binding.Float(raw["price"]); ok {
		in.Price = price
	}

	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return in, []FieldError{{Type: "field", Msg: err.Error(), Location: "body"}}
	}

	fieldErrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Field()
		fieldErrs = append(fieldErrs, FieldError{
			Type:     "field",
			Value:    raw[path],
			Msg:      fieldMessages[path],
			Path:     path,
			Location: "body",
		})
	}
	return in, fieldErrs
}
