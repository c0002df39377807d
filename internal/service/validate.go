package service

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized - любой провал аутентификации. "Нет такого
	// пользователя" и "не тот пароль" наружу неразличимы, чтобы
	// нельзя было перебирать имена.
	ErrUnauthorized = errors.New("unauthorized")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const specialChars = `!@#$%^&*(),.?":{}|<>`

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", ErrValidation)
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, and underscores", ErrValidation)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	var hasUpper, hasLower, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", ErrValidation)
	}
	if !hasLower {
		return fmt.Errorf("%w: password must contain at least one lowercase letter", ErrValidation)
	}
	if !hasSpecial {
		return fmt.Errorf("%w: password must contain at least one special character", ErrValidation)
	}
	return nil
}
