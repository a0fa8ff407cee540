package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json names.
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

// PickupForm registers a new pickup notice and produces the first message.
type PickupForm struct {
	WhatsApp      string `json:"whatsapp"       validate:"required"`
	ContactName   string `json:"contact_name"   validate:"required"`
	CompanyName   string `json:"company_name"   validate:"required"`
	InvoiceNumber string `json:"invoice_number" validate:"required"`
}

// CollectionForm asks a carrier to schedule a collection. Nothing is stored.
type CollectionForm struct {
	WhatsApp    string `json:"whatsapp"     validate:"required"`
	Name        string `json:"name"         validate:"required"`
	City        string `json:"city"         validate:"required"`
	Volume      string `json:"volume"       validate:"required"`
	Weight      string `json:"weight"       validate:"required"`
	CubicMeters string `json:"cubic_meters" validate:"required"`
}

// QuoteForm asks a carrier for a freight quote. Nothing is stored.
type QuoteForm struct {
	WhatsApp    string `json:"whatsapp"     validate:"required"`
	Name        string `json:"name"         validate:"required"`
	City        string `json:"city"         validate:"required"`
	Volume      string `json:"volume"       validate:"required"`
	Weight      string `json:"weight"       validate:"required"`
	CubicMeters string `json:"cubic_meters" validate:"required"`
	CargoValue  string `json:"cargo_value"  validate:"required"`
}

// ValidateForm runs the struct tags and folds failures into ErrValidation.
func ValidateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Validationf("%s", err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return Validationf("missing required fields: %s", strings.Join(fields, ", "))
}
