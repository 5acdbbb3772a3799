package validation

import (
	"fmt"
	"reflect"
	"strings"

	apperror "goficha/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimal.Decimal é validado como número (gte=0, gt=0 etc).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Usa o nome JSON do campo nas mensagens.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct valida s pelas tags `validate` e converte as falhas num ValidationError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperror.NewValidationError(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "len":
		return fmt.Sprintf("%s deve ter %s caracteres", fe.Field(), fe.Param())
	case "numeric", "number":
		return fmt.Sprintf("%s deve conter apenas dígitos", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s deve ser um UUID válido", fe.Field())
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um de [%s]", fe.Field(), fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s viola o limite %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
}
