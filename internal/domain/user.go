package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	minInputUsernameLength = 3
	minAge                 = 18
	maxAge                 = 100

	usernameMinLength = 5
	usernameMaxLength = 15
)

// ValidateUserInput checks a sign-up form. All violations are reported,
// username first.
func ValidateUserInput(username, age any) Outcome[string] {
	var errs []string

	name, ok := username.(string)
	if !ok || utf8.RuneCountInString(name) < minInputUsernameLength {
		errs = append(errs, MsgInvalidUsername)
	}

	years, ok := asNumber(age)
	if !ok || years < minAge || years > maxAge {
		errs = append(errs, MsgInvalidAge)
	}

	if len(errs) > 0 {
		return Fail[string](strings.Join(errs, ", "))
	}
	return Ok(MsgValidationOK)
}

func IsValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= usernameMinLength && n <= usernameMaxLength
}
