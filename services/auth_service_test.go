package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"snappy/auth"
	"snappy/errors"
	"snappy/repositories"
)

const validPassword = "CorrectHorse42!"

func init() {
	auth.SetSigningKey([]byte("test-signing-key"))
}

// stubUserRepository keeps accounts in a map, keyed by username.
type stubUserRepository struct {
	users   map[string]repositories.User
	failure error
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{users: make(map[string]repositories.User)}
}

func (s *stubUserRepository) CreateUser(user repositories.User) (string, error) {
	if s.failure != nil {
		return "", s.failure
	}
	if _, exists := s.users[user.Username]; exists {
		return "", errors.ErrUserAlreadyExists
	}
	user.ID = "id-" + user.Username
	s.users[user.Username] = user
	return user.ID, nil
}

func (s *stubUserRepository) GetUserByUsername(username string) (repositories.User, error) {
	if s.failure != nil {
		return repositories.User{}, s.failure
	}
	user, ok := s.users[username]
	if !ok {
		return repositories.User{}, errors.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserRepository) UpdateAvatar(username, image string) (repositories.User, error) {
	user, ok := s.users[username]
	if !ok {
		return repositories.User{}, errors.ErrUserNotFound
	}
	user.AvatarImage = image
	user.IsAvatarSet = true
	s.users[username] = user
	return user, nil
}

func (s *stubUserRepository) ListUsers(excludeUsername string) ([]repositories.User, error) {
	if s.failure != nil {
		return nil, s.failure
	}
	var out []repositories.User
	for _, user := range s.users {
		if user.Username == excludeUsername {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	repo := newStubUserRepository()
	service := NewAuthService(repo, time.Hour)

	// When alice registers
	user, token, err := service.Register("alice", "Alice Doe", "alice@example.com", validPassword)
	req.NoError(err)
	req.NotEmpty(token)
	req.Equal("alice", user.Username)

	// Then the stored hash is not the plain password
	req.NotEqual(validPassword, repo.users["alice"].PasswordHash)

	// And she can log back in
	_, loginToken, err := service.Login("alice", validPassword)
	req.NoError(err)
	req.NotEmpty(loginToken)

	// And the token carries her identity
	claims, err := auth.ValidateToken(string(loginToken))
	req.NoError(err)
	req.Equal("alice", claims.Username)
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newStubUserRepository(), time.Hour)

	_, _, err := service.Register("alice", "Alice Doe", "alice@example.com", "short")
	req.ErrorIs(err, errors.ErrValidation)
}

func TestAuthService_RegisterRejectsBadEmail(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newStubUserRepository(), time.Hour)

	_, _, err := service.Register("alice", "Alice Doe", "not-an-email", validPassword)
	req.ErrorIs(err, errors.ErrValidation)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newStubUserRepository(), time.Hour)

	_, _, err := service.Register("alice", "Alice Doe", "alice@example.com", validPassword)
	req.NoError(err)

	_, _, err = service.Register("alice", "Alice Two", "alice2@example.com", validPassword)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newStubUserRepository(), time.Hour)

	_, _, err := service.Register("alice", "Alice Doe", "alice@example.com", validPassword)
	req.NoError(err)

	// Unknown user and wrong password yield the exact same error
	_, _, unknownErr := service.Login("ghost", validPassword)
	_, _, wrongErr := service.Login("alice", "WrongPassword99!")

	req.ErrorIs(unknownErr, errors.ErrInvalidCredentials)
	req.ErrorIs(wrongErr, errors.ErrInvalidCredentials)
	req.Equal(unknownErr.Error(), wrongErr.Error())
}
