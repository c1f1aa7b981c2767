package services

import (
	"fmt"
	"time"

	"snappy/auth"
	"snappy/errors"
	"snappy/repositories"
)

type IAuthService interface {
	Register(username, fullName, email, password string) (repositories.User, Token, error)
	Login(username, password string) (repositories.User, Token, error)
}

type Token string

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) *AuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(username, fullName, email, password string) (repositories.User, Token, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		FullName: fullName,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return repositories.User{}, "", fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	// 2. Hash the password here to keep the repository unaware of plain
	// passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return repositories.User{}, "", fmt.Errorf("hashing failed: %w", err)
	}

	user := repositories.User{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	userID, err := s.userRepository.CreateUser(user)
	if err != nil {
		return repositories.User{}, "", err // propagates ErrUserAlreadyExists
	}
	user.ID = userID

	token, err := auth.GenerateToken(userID, user.Username, s.tokenDuration)
	if err != nil {
		return repositories.User{}, "", errors.ErrTokenGeneration
	}

	created, err := s.userRepository.GetUserByUsername(user.Username)
	if err != nil {
		return repositories.User{}, "", err
	}
	return created, Token(token), nil
}

func (s *AuthService) Login(username, password string) (repositories.User, Token, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return repositories.User{}, "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return repositories.User{}, "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.tokenDuration)
	if err != nil {
		return repositories.User{}, "", errors.ErrTokenGeneration
	}

	return user, Token(token), nil
}
