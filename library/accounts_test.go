package library

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccounts(t *testing.T) (*Accounts, Config) {
	t.Helper()
	store, cfg := tempStore(t)
	return NewAccounts(store, zerolog.Nop()), cfg
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Password: "abc123!",
		Name:     "Alice Nguyễn",
		Phone:    "0912345678",
		Email:    "alice@example.com",
		Address:  "12 Phố Huế, Hà Nội",
		Role:     RoleReader,
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	accounts, _ := newAccounts(t)

	acct, err := accounts.Register(validRegistration())
	require.NoError(t, err)
	assert.Equal(t, RoleReader, acct.Role)
	assert.NotEmpty(t, acct.PasswordHash)
	assert.NotEqual(t, "abc123!", acct.PasswordHash, "password is never stored in clear")

	got, err := accounts.Authenticate("alice", "abc123!")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, RoleReader, got.Role)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	accounts, _ := newAccounts(t)
	_, err := accounts.Register(validRegistration())
	require.NoError(t, err)

	_, wrongPassword := accounts.Authenticate("alice", "wrong1!")
	_, unknownUser := accounts.Authenticate("mallory", "abc123!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.EqualError(t, wrongPassword, unknownUser.Error())
}

func TestRegisterPasswordRules(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"abc123!", true},
		{"x9@", true},
		{"abc123", false},  // no special character
		{"abcdef!", false}, // no digit
		{"123456!", false}, // no letter
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			accounts, _ := newAccounts(t)
			in := validRegistration()
			in.Password = tc.password
			_, err := accounts.Register(in)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestRegisterFieldRules(t *testing.T) {
	cases := map[string]func(*RegisterInput){
		"empty username":    func(in *RegisterInput) { in.Username = "" },
		"empty name":        func(in *RegisterInput) { in.Name = "" },
		"empty address":     func(in *RegisterInput) { in.Address = "" },
		"empty role":        func(in *RegisterInput) { in.Role = "" },
		"unknown role":      func(in *RegisterInput) { in.Role = "guest" },
		"short phone":       func(in *RegisterInput) { in.Phone = "091234567" },
		"bad phone prefix":  func(in *RegisterInput) { in.Phone = "1912345678" },
		"email without tld": func(in *RegisterInput) { in.Email = "alice@example" },
		"email without at":  func(in *RegisterInput) { in.Email = "alice.example.com" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			accounts, _ := newAccounts(t)
			in := validRegistration()
			mutate(&in)
			_, err := accounts.Register(in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterAcceptsEveryPhonePrefix(t *testing.T) {
	accounts, _ := newAccounts(t)
	for i, prefix := range []string{"03", "09", "02", "08"} {
		in := validRegistration()
		in.Username = string(rune('a' + i))
		in.Phone = prefix + "12345678"
		_, err := accounts.Register(in)
		assert.NoError(t, err, prefix)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	accounts, _ := newAccounts(t)
	_, err := accounts.Register(validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err = accounts.Register(dup)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAccountsSurviveReload(t *testing.T) {
	accounts, cfg := newAccounts(t)
	_, err := accounts.Register(validRegistration())
	require.NoError(t, err)

	store, err := OpenStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	reopened := NewAccounts(store, zerolog.Nop())

	acct, err := reopened.Authenticate("alice", "abc123!")
	require.NoError(t, err)
	assert.Equal(t, "Alice Nguyễn", acct.Name)
}
