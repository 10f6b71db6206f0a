package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateCardPayment checks normalized card and address fields and reports every
// offending field as "card.<field>" or "billing_address.<field>".
func ValidateCardPayment(card CardFields, addr AddressFields) error {
	details := map[string]string{}
	collect("card", validate.Struct(card), details)
	collect("billing_address", validate.Struct(addr), details)
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment details invalid for %d field(s)", len(details))).WithDetails(details)
}

func collect(prefix string, err error, into map[string]string) {
	if err == nil {
		return
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		into[prefix] = err.Error()
		return
	}
	for _, fe := range errs {
		into[prefix+"."+fe.Field()] = message(fe)
	}
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "is required"
	}
	return "is invalid"
}
