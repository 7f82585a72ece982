package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("payment_kind", func(fl validator.FieldLevel) bool {
		return vo.PaymentKind(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return vo.PaymentMethod(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return vo.PaymentStatus(fl.Field().String()).IsValid()
	})
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "payment_kind":
		return fmt.Sprintf("%s must be one of [%s %s]", field, vo.PaymentKindNewSubscriberInitial, vo.PaymentKindExistingSubscriberInitial)
	case "payment_method":
		return fmt.Sprintf("%s must be one of [%s %s]", field, vo.PaymentMethodCard, vo.PaymentMethodBankTransfer)
	case "payment_status":
		return fmt.Sprintf("%s must be a payment status", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
