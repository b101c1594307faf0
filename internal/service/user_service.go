package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/listing"
	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/validation"
)

type UserRepository interface {
	Store[model.User]
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// UserInput is the user form. Password is optional on update and keeps the
// current hash when empty.
type UserInput struct {
	Username        string     `json:"username" validate:"required,min=3"`
	Password        string     `json:"password" validate:"omitempty,min=6"`
	ConfirmPassword string     `json:"confirmPassword" validate:"eqfield=Password"`
	Role            model.Role `json:"role" validate:"oneof=ADMIN MANAGER USER"`
}

type UserService struct {
	users UserRepository
	cost  int
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost}
}

var UserFields = listing.Fields[model.User]{
	"username": func(u model.User) string { return u.Username },
	"role":     func(u model.User) string { return string(u.Role) },
}

func (s *UserService) List(ctx context.Context, principal model.Principal) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *UserService) Page(ctx context.Context, principal model.Principal, q listing.Query) (listing.Page[model.User], error) {
	users, err := s.List(ctx, principal)
	if err != nil {
		return listing.Page[model.User]{}, err
	}
	return listing.Paginate(users, UserFields, q), nil
}

func (s *UserService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.User, error) {
	if !principal.IsAdmin() && principal.UserID != id {
		return nil, ErrPermissionDenied
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, principal model.Principal, in UserInput) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, validation.Errors{"password": "Please enter this field"}
	}
	if err := s.ensureUnique(ctx, in.Username, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: in.Username, PasswordHash: string(hash), Role: in.Role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, constraint(err, "user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, in UserInput) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := s.ensureUnique(ctx, in.Username, id); err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Role = in.Role
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, constraint(err, "user")
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if principal.UserID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}
	if _, err := s.users.Get(ctx, id); err != nil {
		return notFound(err, "user")
	}
	return s.users.Delete(ctx, id)
}

// EnsureAdmin creates the first administrator when the user table is empty.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	system := model.Principal{Role: model.RoleAdmin}
	if _, err := s.Create(ctx, system, UserInput{
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
		Role:            model.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return user, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username string, self uuid.UUID) error {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: username %q is taken", ErrConflict, username)
	}
	return nil
}
