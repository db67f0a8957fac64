package validation_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/ai-chat/internal/validation"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		want     error
	}{
		{"valid", "alice_01", nil},
		{"hyphen", "bob-smith", nil},
		{"min length", "abc", nil},
		{"max length", strings.Repeat("a", 50), nil},
		{"too short", "ab", validation.ErrUsernameLength},
		{"too long", strings.Repeat("a", 51), validation.ErrUsernameLength},
		{"space", "alice smith", validation.ErrUsernameCharset},
		{"dot", "alice.smith", validation.ErrUsernameCharset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, validation.ValidateUsername(tc.username))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, validation.ValidateEmail("alice@gmail.com"))
	require.NoError(t, validation.ValidateEmail("alice.b+tag@Outlook.COM"))
	require.Equal(t, validation.ErrEmailFormat, validation.ValidateEmail("alice@"))
	require.Equal(t, validation.ErrEmailFormat, validation.ValidateEmail("alice@gmail"))
	require.Equal(t, validation.ErrEmailDomain, validation.ValidateEmail("alice@example.com"))
	require.Contains(t, validation.ErrEmailDomain.Error(), "gmail.com, yahoo.com, hotmail.com, outlook.com")
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"Passw0rd!", nil},
		{"Aa1@" + strings.Repeat("x", 68), nil},
		{"Aa1@" + strings.Repeat("x", 69), validation.ErrPasswordTooLong},
		{"Pa0!", validation.ErrPasswordLength},
		{"PASSWORD0!", validation.ErrPasswordLower},
		{"password0!", validation.ErrPasswordUpper},
		{"Password!!", validation.ErrPasswordDigit},
		{"Password00", validation.ErrPasswordSpecial},
		{"Passw0rd!#", validation.ErrPasswordCharset},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%.16s/%d", tc.password, len(tc.password)), func(t *testing.T) {
			require.Equal(t, tc.want, validation.ValidatePassword(tc.password))
		})
	}
}

func TestValidateRegistrationCollectsAllFields(t *testing.T) {
	errs := validation.ValidateRegistration("x", "nope", "short")
	require.False(t, errs.Empty())
	require.Equal(t, []string{"username", "email", "password"}, errs.Fields())
	require.Equal(t, []string{
		validation.ErrUsernameLength.Error(),
		validation.ErrEmailFormat.Error(),
		validation.ErrPasswordLength.Error(),
	}, errs.Messages())

	require.True(t, validation.ValidateRegistration("alice", "alice@yahoo.com", "Passw0rd!").Empty())
}
