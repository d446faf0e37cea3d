package command

import (
	"fmt"
	"regexp"

	"usermanagement_server/pkg/constants"
	"usermanagement_server/pkg/errorx"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type usernameRule struct {
	tag  string
	code errorx.ErrorCode
}

// UsernameValidator checks a candidate username against every rule and reports all failures at once.
type UsernameValidator struct {
	validate *validator.Validate
	rules    []usernameRule
}

// NewUsernameValidator registers the username_chars tag and the length rules.
func NewUsernameValidator() *UsernameValidator {
	v := validator.New()
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &UsernameValidator{
		validate: v,
		rules: []usernameRule{
			{tag: fmt.Sprintf("min=%d", constants.USERNAME_MIN_LENGTH), code: errorx.TooShort},
			{tag: fmt.Sprintf("max=%d", constants.USERNAME_MAX_LENGTH), code: errorx.TooLong},
			{tag: "username_chars", code: errorx.InvalidCharacters},
		},
	}
}

// Validate returns the violated rules, or nil when name is acceptable.
// The reserved name is reported as ALREADY_TAKEN.
func (u *UsernameValidator) Validate(name string) []errorx.ErrorCode {
	var codes []errorx.ErrorCode
	for _, rule := range u.rules {
		if err := u.validate.Var(name, rule.tag); err != nil {
			codes = append(codes, rule.code)
		}
	}
	if name == constants.RESERVED_USERNAME {
		codes = append(codes, errorx.AlreadyTaken)
	}
	return codes
}
