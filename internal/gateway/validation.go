package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator checks request bodies before they reach the server.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	val.v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(models.DateTime); ok {
			return d.Time
		}
		return nil
	}, models.DateTime{})

	_ = val.v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = val.v.RegisterValidation("futureorpresent", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !t.Before(val.now().Truncate(time.Second))
	})
	val.v.RegisterStructValidation(func(sl validator.StructLevel) {
		b := sl.Current().Interface().(bookingRequest)
		if b.Start != nil && b.End != nil && b.Start.Equal(b.End.Time) {
			sl.ReportError(b.End, "end", "End", "neqstart", "")
		}
	}, bookingRequest{})

	return val
}

// DecodeAndValidate unmarshals body into dst and runs its rules.
func (val *Validator) DecodeAndValidate(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	if err := val.v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errors.New(describe(verrs))
		}
		return err
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), ruleMessage(fe)))
	}
	return strings.Join(msgs, "; ")
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be null"
	case "notblank":
		return "must not be blank"
	case "max":
		return fmt.Sprintf("size must be at most %s", fe.Param())
	case "email":
		return "must be a well-formed email address"
	case "futureorpresent":
		return "date cannot be in past"
	case "neqstart":
		return "start and end cannot be equal"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
