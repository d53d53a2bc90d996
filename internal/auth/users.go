package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/logger"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	username     string
	password     string
	passwordHash []byte
	role         Role
}

// Authenticator checks admin credentials against the configured accounts.
type Authenticator struct {
	accounts map[string]account
	log      zerolog.Logger
}

func NewAuthenticator(users []config.AdminUser) (*Authenticator, error) {
	accounts := make(map[string]account, len(users))
	for _, u := range users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			continue
		}
		role := Role(u.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("admin user %q has unknown role %q", name, u.Role)
		}
		if u.Password == "" && u.PasswordHash == "" {
			return nil, fmt.Errorf("admin user %q has no password", name)
		}
		accounts[name] = account{
			username:     name,
			password:     u.Password,
			passwordHash: []byte(u.PasswordHash),
			role:         role,
		}
	}
	return &Authenticator{accounts: accounts, log: logger.Get()}, nil
}

// Verify returns the matching principal, or ErrBadCredentials for any mismatch.
func (a *Authenticator) Verify(username, password string) (Principal, error) {
	acct, ok := a.accounts[strings.TrimSpace(username)]
	if !ok {
		a.log.Warn().Str("username", username).Msg("Login for unknown admin user")
		return Principal{}, errors.ErrBadCredentials
	}

	var match bool
	if len(acct.passwordHash) > 0 {
		match = bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) == nil
	} else {
		match = subtle.ConstantTimeCompare([]byte(acct.password), []byte(password)) == 1
	}
	if !match {
		a.log.Warn().Str("username", username).Msg("Invalid admin password")
		return Principal{}, errors.ErrBadCredentials
	}

	return Principal{Username: acct.username, Role: acct.role}, nil
}
