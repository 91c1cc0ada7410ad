package orders

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ShippingForm is the contact and delivery address entered at checkout.
type ShippingForm struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Street  string `json:"street" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=120"`
	State   string `json:"state" validate:"required,max=120"`
	Pincode string `json:"pincode" validate:"required,max=16"`
}

// Normalize trims every field.
func (f ShippingForm) Normalize() ShippingForm {
	return ShippingForm{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:   strings.TrimSpace(f.Phone),
		Street:  strings.TrimSpace(f.Street),
		City:    strings.TrimSpace(f.City),
		State:   strings.TrimSpace(f.State),
		Pincode: strings.TrimSpace(f.Pincode),
	}
}

// Validate runs the struct rules and reports each failing field.
func (f ShippingForm) Validate() error {
	return ValidateStruct("invalid shipping details", f)
}

// ValidateStruct applies validate tags to v and maps failures to field errors.
func ValidateStruct(message string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	}
	fields := make([]pkgerrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, pkgerrors.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return pkgerrors.Validation(message, fields...)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	}
	return "is invalid"
}
