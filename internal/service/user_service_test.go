package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nurpe/dumpster-rentals/internal/auth"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

func newUserService() (*UserService, *fakeUsers) {
	users := newFakeUsers()
	svc := NewUserService(users)
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestUserService_CreateValidates(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	tests := []struct {
		name  string
		in    UserInput
		field string
	}{
		{"short username", UserInput{Username: "ab", Password: "secret1", ConfirmPassword: "secret1", Role: model.RoleUser}, "username"},
		{"short password", UserInput{Username: "alice", Password: "123", ConfirmPassword: "123", Role: model.RoleUser}, "password"},
		{"mismatch", UserInput{Username: "alice", Password: "secret1", ConfirmPassword: "secret2", Role: model.RoleUser}, "confirmPassword"},
		{"missing password", UserInput{Username: "alice", Role: model.RoleUser}, "password"},
		{"bad role", UserInput{Username: "alice", Password: "secret1", ConfirmPassword: "secret1", Role: "ROOT"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin, tt.in)
			var fieldErrs validation.Errors
			if !errors.As(err, &fieldErrs) || fieldErrs[tt.field] == "" {
				t.Fatalf("expected %s error, got %v", tt.field, err)
			}
		})
	}
}

func TestUserService_CreateHashesAndIsUnique(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()
	in := UserInput{Username: "alice", Password: "secret1", ConfirmPassword: "secret1", Role: model.RoleManager}

	user, err := svc.Create(ctx, admin, in)
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := users.Get(ctx, user.ID)
	if stored.PasswordHash == "secret1" || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")) != nil {
		t.Fatal("password must be stored as a bcrypt hash")
	}
	if _, err := svc.Create(ctx, admin, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username: %v", err)
	}
	if _, err := svc.Create(ctx, manager, in); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("only admins manage users: %v", err)
	}

	update := UserInput{Username: "alice", Role: model.RoleUser}
	updated, err := svc.Update(ctx, admin, user.ID, update)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != model.RoleUser || updated.PasswordHash != stored.PasswordHash {
		t.Fatal("empty password on update must keep the existing hash")
	}
}

func TestSessionService_LoginMeLogout(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, admin, UserInput{Username: "alice", Password: "secret1", ConfirmPassword: "secret1", Role: model.RoleManager}); err != nil {
		t.Fatal(err)
	}
	sessions := NewSessionService(svc, auth.NewIssuer("k", time.Hour), auth.NewParser("k"), auth.NewMemoryRevocations())

	if _, err := sessions.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := sessions.Login(ctx, "nobody", "secret1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown user: %v", err)
	}

	session, err := sessions.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	principal, expires, err := sessions.Authenticate(ctx, session.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	me, err := sessions.Me(ctx, principal)
	if err != nil || me.Username != "alice" {
		t.Fatalf("me: %v %v", me, err)
	}

	if err := sessions.Logout(ctx, principal, expires); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sessions.Authenticate(ctx, session.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("revoked token must be rejected: %v", err)
	}
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root", "secret1")
	if err != nil || !created {
		t.Fatalf("expected bootstrap admin, got created=%v err=%v", created, err)
	}
	created, err = svc.EnsureAdmin(ctx, "other", "secret2")
	if err != nil || created {
		t.Fatalf("expected no second admin, got created=%v err=%v", created, err)
	}

	all, _ := users.List(ctx)
	if len(all) != 1 || all[0].Role != model.RoleAdmin {
		t.Fatalf("unexpected users: %+v", all)
	}
}
