// Package validation holds the account rules shared by the API server and the
// terminal client, so both sides reject the same input with the same message.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 8
	// PasswordMaxBytes is the most bcrypt will hash.
	PasswordMaxBytes = 72

	// PasswordSpecials lists the only accepted special characters.
	PasswordSpecials = "@$!%*?&"
)

// AllowedEmailDomains is the accepted set of email domains, compared lower-cased.
var AllowedEmailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
)

var (
	ErrUsernameLength  = errors.New("Username must be between 3 and 50 characters")
	ErrUsernameCharset = errors.New("Username can only contain letters, numbers, underscores, and hyphens")

	ErrEmailFormat = errors.New("Invalid email format")
	ErrEmailDomain = errors.New("Email domain must be one of: " + strings.Join(AllowedEmailDomains, ", "))

	ErrPasswordLength  = errors.New("Password must be at least 8 characters long")
	ErrPasswordTooLong = errors.New("Password must be at most 72 characters long")
	ErrPasswordLower   = errors.New("Password must contain at least one lowercase letter")
	ErrPasswordUpper   = errors.New("Password must contain at least one uppercase letter")
	ErrPasswordDigit   = errors.New("Password must contain at least one number")
	ErrPasswordSpecial = errors.New("Password must contain at least one special character (@$!%*?&)")
	ErrPasswordCharset = errors.New("Password may only contain letters, numbers and @$!%*?&")
)

// Field names used as keys in Errors and in API error locations.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// ValidateUsername checks length first, then the allowed character set.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameCharset
	}
	return nil
}

// ValidateEmail checks the address shape and that its domain is allow-listed.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}
	domain := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	for _, allowed := range AllowedEmailDomains {
		if domain == allowed {
			return nil
		}
	}
	return ErrEmailDomain
}

// ValidatePassword reports the first unmet strength rule.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLen {
		return ErrPasswordLength
	}
	if len(password) > PasswordMaxBytes {
		return ErrPasswordTooLong
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}

	switch {
	case !lower:
		return ErrPasswordLower
	case !upper:
		return ErrPasswordUpper
	case !digit:
		return ErrPasswordDigit
	case !special:
		return ErrPasswordSpecial
	case !passwordCharset.MatchString(password):
		return ErrPasswordCharset
	}
	return nil
}

// Errors maps a field name to its first failing rule message.
type Errors map[string]string

// Empty reports whether no field failed.
func (e Errors) Empty() bool { return len(e) == 0 }

// Fields returns failing field names in form order.
func (e Errors) Fields() []string {
	var out []string
	for _, f := range []string{FieldUsername, FieldEmail, FieldPassword} {
		if _, ok := e[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Messages returns the messages in form order.
func (e Errors) Messages() []string {
	fields := e.Fields()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, e[f])
	}
	return out
}

// ValidateRegistration runs every field rule and collects the failures.
func ValidateRegistration(username, email, password string) Errors {
	errs := Errors{}
	if err := ValidateUsername(username); err != nil {
		errs[FieldUsername] = err.Error()
	}
	if err := ValidateEmail(email); err != nil {
		errs[FieldEmail] = err.Error()
	}
	if err := ValidatePassword(password); err != nil {
		errs[FieldPassword] = err.Error()
	}
	return errs
}
