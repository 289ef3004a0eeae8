package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	tokens "github.com/BruksfildServices01/slot-booking/internal/auth"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

var (
	ErrEmailTaken         = httperr.ErrBusiness(httperr.KindConflict, "email_taken")
	ErrInvalidEmailDomain = httperr.ErrValidation("invalid_email_domain")
	ErrInvalidCredentials = httperr.ErrBusiness(httperr.KindUnauthorized, "invalid_credentials")
	ErrPasswordTooLong    = httperr.ErrValidation("password_too_long")
)

// MaxPasswordBytes is the bcrypt input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

// EmailVerifier reports whether the email's domain can receive mail.
type EmailVerifier func(ctx context.Context, email string) bool

type Result struct {
	User  *models.User
	Token string
}

// ======================================================
// REGISTER
// ======================================================

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Register struct {
	users  domain.UserRepository
	tokens *tokens.TokenService
	verify EmailVerifier
	audit  *audit.Dispatcher
}

func NewRegister(
	users domain.UserRepository,
	tokenService *tokens.TokenService,
	verify EmailVerifier,
	audit *audit.Dispatcher,
) *Register {
	return &Register{
		users:  users,
		tokens: tokenService,
		verify: verify,
		audit:  audit,
	}
}

// Execute creates a patient account and returns a token for it.
func (uc *Register) Execute(ctx context.Context, in RegisterInput) (*Result, error) {
	email := NormalizeEmail(in.Email)

	if len(in.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	if uc.verify != nil && !uc.verify(ctx, email) {
		return nil, ErrInvalidEmailDomain
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RolePatient,
	}

	if err := uc.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   audit.ActionUserRegistered,
		Entity:   "user",
		EntityID: &user.ID,
	})

	return &Result{User: user, Token: token}, nil
}

// ======================================================
// LOGIN
// ======================================================

type LoginInput struct {
	Email    string
	Password string
}

type Login struct {
	users  domain.UserRepository
	tokens *tokens.TokenService
}

func NewLogin(users domain.UserRepository, tokenService *tokens.TokenService) *Login {
	return &Login{users: users, tokens: tokenService}
}

func (uc *Login) Execute(ctx context.Context, in LoginInput) (*Result, error) {
	user, err := uc.users.FindUserByEmail(ctx, NormalizeEmail(in.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Result{User: user, Token: token}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
