// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	NameMaxLength  = 104
	EmailMaxLength = 254
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}()

type joinFields struct {
	Name     string `json:"name" validate:"required,max=104"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

var fieldOrder = []string{"name", "email", "password"}

// validateJoinFields checks name, email and password. The password is also
// run through the strength checks and compared against the email.
func validateJoinFields(passwords *PasswordValidator, name, email, password string) *Error {
	problems := map[string][]string{}

	err := validate.Struct(joinFields{Name: strings.TrimSpace(name), Email: email, Password: password})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			problems[fe.Field()] = append(problems[fe.Field()], friendlyMessage(fe))
		}
	} else if err != nil {
		return unexpectedError(err)
	}

	if password != "" {
		problems["password"] = append(problems["password"], passwords.Validate(password, email)...)
	}

	var fields []FieldError
	for _, name := range fieldOrder {
		for _, msg := range problems[name] {
			fields = append(fields, FieldError{Field: name, Message: msg})
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return validationError(fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	default:
		return "is invalid"
	}
}
