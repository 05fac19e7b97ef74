package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a login attempt does not match a
// stored user and password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a bearer token is missing, malformed,
// expired, or its subject no longer exists.
var ErrInvalidToken = errors.New("invalid or expired token")

// Service provides registration, login, and credential resolution.
type Service struct {
	users      UserRepository
	issuer     *TokenIssuer
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(users UserRepository, issuer *TokenIssuer, bcryptCost int) *Service {
	return &Service{
		users:      users,
		issuer:     issuer,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user with a hashed password. Returns
// ErrDuplicateEmail if the email is already taken.
func (s *Service) Register(ctx context.Context, email, password string, role Role) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the email and password and returns a signed access token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}

	return token, nil
}

// Authenticate resolves a raw bearer token to the caller's Identity with a
// single user lookup. Every failure mode collapses to ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Identity, error) {
	userID, err := s.issuer.Validate(rawToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("looking up token subject: %w", err)
	}

	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		TeamID: user.TeamID,
	}, nil
}
