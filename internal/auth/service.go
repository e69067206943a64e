package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	repo   UserRepository
	tokens *Tokens
}

func NewService(repo UserRepository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// SeedAdmin stores the admin account with a bcrypt hash of password,
// replacing any previous password.
func (s *Service) SeedAdmin(email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("missing required fields")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:    email,
		Password: string(hashedPassword),
		Role:     RoleAdmin,
	}

	if err := s.repo.Save(user); err != nil {
		return nil, err
	}

	return user, nil
}

// LOGIN
func (s *Service) Login(email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(strings.TrimSpace(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(user.Password),
		[]byte(password),
	)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
