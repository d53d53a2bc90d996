package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	apperrors "github.com/cccbbbaaaa/culture-china/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

func TestRoleScopes(t *testing.T) {
	tests := []struct {
		role   Role
		scopes []Scope
		want   bool
	}{
		{RoleContentEditor, []Scope{ScopeResources}, true},
		{RoleContentEditor, []Scope{ScopeMedia, ScopeResources}, true},
		{RoleContentEditor, []Scope{ScopeAlumni}, false},
		{RoleSuperAdmin, []Scope{ScopeAlumni, ScopeMedia, ScopeResources}, true},
		{Role("guest"), []Scope{ScopeMedia}, false},
	}
	for _, tt := range tests {
		if got := tt.role.HasScope(tt.scopes...); got != tt.want {
			t.Fatalf("%s.HasScope(%v) = %v, want %v", tt.role, tt.scopes, got, tt.want)
		}
	}
}

func TestRequire(t *testing.T) {
	if _, err := Require(context.Background(), ScopeMedia); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected denial without principal, got %v", err)
	}

	ctx := WithPrincipal(context.Background(), Principal{Username: "editor", Role: RoleContentEditor})
	if _, err := Require(ctx, ScopeAlumni); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("editor must not reach alumni, got %v", err)
	}
	p, err := Require(ctx, ScopeResources)
	if err != nil || p.Username != "editor" {
		t.Fatalf("expected editor principal, got %+v %v", p, err)
	}
}

func TestAuthenticatorVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("root-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a, err := NewAuthenticator([]config.AdminUser{
		{Username: "editor", Password: "plain-pass", Role: "content_editor"},
		{Username: "root", PasswordHash: string(hash), Role: "super_admin"},
	})
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}

	if p, err := a.Verify("editor", "plain-pass"); err != nil || p.Role != RoleContentEditor {
		t.Fatalf("editor login failed: %+v %v", p, err)
	}
	if p, err := a.Verify("root", "root-pass"); err != nil || p.Role != RoleSuperAdmin {
		t.Fatalf("root login failed: %+v %v", p, err)
	}
	for _, creds := range [][2]string{{"editor", "nope"}, {"root", "plain-pass"}, {"ghost", "x"}} {
		if _, err := a.Verify(creds[0], creds[1]); !errors.Is(err, apperrors.ErrBadCredentials) {
			t.Fatalf("expected bad credentials for %v, got %v", creds, err)
		}
	}
}

func TestNewAuthenticatorRejectsUnknownRole(t *testing.T) {
	if _, err := NewAuthenticator([]config.AdminUser{{Username: "x", Password: "y", Role: "owner"}}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", time.Hour)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	token, expires, err := tokens.Issue(Principal{Username: "root", Role: RoleSuperAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", expires)
	}

	p, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Username != "root" || p.Role != RoleSuperAdmin {
		t.Fatalf("unexpected principal %+v", p)
	}

	other, _ := NewTokens("other-secret", time.Hour)
	if _, err := other.Parse(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected signature failure, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := tokens.Parse(token); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected expiry failure, got %v", err)
	}
}
