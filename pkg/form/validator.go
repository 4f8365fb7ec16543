package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages holds the text displayed for each failing rule.
type Messages struct {
	Required      string
	Email         string
	PasswordShort string
	Invalid       string
}

// DefaultMessages returns the messages of the login page.
func DefaultMessages() Messages {
	return Messages{
		Required:      "Ce champ est requis",
		Email:         "Adresse email invalide",
		PasswordShort: fmt.Sprintf("Le mot de passe doit contenir au moins %d caractères", MinPasswordLength),
		Invalid:       "Valeur invalide",
	}
}

// Validator checks login values against the rules declared on Values.
type Validator struct {
	v        *validator.Validate
	messages Messages
}

// NewValidator returns a validator reporting failures with msgs.
func NewValidator(msgs Messages) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{v: v, messages: msgs}
}

// Validate returns one message per failing field. An empty map means the
// values are valid.
func (v *Validator) Validate(values Values) map[Field]string {
	errs := make(map[Field]string)

	err := v.v.Struct(values)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs[FieldForm] = v.messages.Invalid
		return errs
	}

	for _, fe := range fieldErrs {
		field := Field(fe.Field())
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = v.message(fe)
	}

	return errs
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return v.messages.Required
	case "email":
		return v.messages.Email
	case "min":
		if Field(fe.Field()) == FieldPassword {
			return v.messages.PasswordShort
		}
	}
	return v.messages.Invalid
}
