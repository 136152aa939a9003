package library

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Credential format rules. The phone rule is the local convention the data
// set uses: ten digits starting 03, 09, 02 or 08.
var (
	passwordLetterRe  = regexp.MustCompile(`[A-Za-z]`)
	passwordDigitRe   = regexp.MustCompile(`\d`)
	passwordSpecialRe = regexp.MustCompile(`[@$!%*?&]`)
	emailRe           = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe           = regexp.MustCompile(`^0[3928]\d{8}$`)
)

// RegisterInput carries everything needed to create an account.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Phone    string
	Email    string
	Address  string
	Role     Role
}

// Validate enforces the registration rules: every field present, password
// containing a letter, a digit and one of @$!%*?&, a plausible email and a
// valid local phone number, and a role from the closed set.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required.Error("username must not be empty")),
		validation.Field(&in.Password,
			validation.Required.Error("password must not be empty"),
			validation.Match(passwordLetterRe).Error("password must contain a letter"),
			validation.Match(passwordDigitRe).Error("password must contain a digit"),
			validation.Match(passwordSpecialRe).Error("password must contain one of @$!%*?&"),
		),
		validation.Field(&in.Name, validation.Required.Error("name must not be empty")),
		validation.Field(&in.Phone,
			validation.Required.Error("phone must not be empty"),
			validation.Match(phoneRe).Error("phone must be 10 digits starting with 03, 09, 02 or 08"),
		),
		validation.Field(&in.Email,
			validation.Required.Error("email must not be empty"),
			validation.Match(emailRe).Error("email must look like user@domain.tld"),
		),
		validation.Field(&in.Address, validation.Required.Error("address must not be empty")),
		validation.Field(&in.Role, validation.Required.Error("role must not be empty"),
			validation.In(RoleAdmin, RoleLibrarian, RoleReader).Error("role must be admin, thuthu or docgia")),
	)
}

// Accounts manages registration and authentication.
type Accounts struct {
	store  *Store
	logger zerolog.Logger
}

func NewAccounts(store *Store, logger zerolog.Logger) *Accounts {
	return &Accounts{store: store, logger: logger}
}

// Register creates an account. The password is stored only as a bcrypt
// hash, never in clear.
func (a *Accounts) Register(in RegisterInput) (*Account, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, ok := a.store.FindUser(in.Username); ok {
		return nil, fmt.Errorf("%w: username %q is already registered", ErrConflict, in.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &Account{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		Address:      in.Address,
	}
	a.store.Users = append(a.store.Users, acct)

	if err := a.store.Save(); err != nil {
		return nil, err
	}
	a.logger.Info().Str("username", acct.Username).Str("role", string(acct.Role)).Msg("account registered")
	return acct, nil
}

// Authenticate checks the credentials and returns the account on success.
// Unknown usernames and wrong passwords fail the same way on purpose.
func (a *Accounts) Authenticate(username, password string) (*Account, error) {
	acct, ok := a.store.FindUser(username)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		a.logger.Warn().Str("username", username).Msg("failed login attempt")
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}
