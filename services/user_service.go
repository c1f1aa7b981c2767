package services

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"snappy/domain"
	"snappy/errors"
	"snappy/repositories"
)

type IUserService interface {
	ListContacts(callerUsername string) ([]Contact, error)
	SetAvatar(username, image string) (repositories.User, error)
}

// Contact is the public projection of a user record, without credentials.
type Contact struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	AvatarImage string `json:"avatarImage,omitempty"`
	IsAvatarSet bool   `json:"isAvatarSet"`
}

type UserService struct {
	userRepository repositories.IUserRepository
	log            *slog.Logger
}

func NewUserService(repo repositories.IUserRepository, log *slog.Logger) *UserService {
	return &UserService{userRepository: repo, log: log}
}

// ListContacts returns every account except the caller's own, for the
// contact sidebar.
func (s *UserService) ListContacts(callerUsername string) ([]Contact, error) {
	users, err := s.userRepository.ListUsers(callerUsername)
	if err != nil {
		s.log.Error("User listing failed", "err", err)
		return nil, fmt.Errorf("%w: user listing failed", errors.ErrStorage)
	}

	contacts := make([]Contact, 0, len(users))
	for _, user := range users {
		contacts = append(contacts, toContact(user))
	}
	return contacts, nil
}

// SetAvatar validates and stores a base64 image payload for the user.
// The payload may arrive as a bare base64 string or a data URL; either
// way the decoded bytes must sniff as an image.
func (s *UserService) SetAvatar(username, image string) (repositories.User, error) {
	if domain.Blank(image) {
		return repositories.User{}, errors.ErrInvalidAvatar
	}

	raw := image
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return repositories.User{}, errors.ErrInvalidAvatar
	}

	if mime := mimetype.Detect(decoded); !strings.HasPrefix(mime.String(), "image/") {
		return repositories.User{}, errors.ErrInvalidAvatar
	}

	user, err := s.userRepository.UpdateAvatar(username, image)
	if err != nil {
		return repositories.User{}, err
	}
	return user, nil
}

func toContact(user repositories.User) Contact {
	return Contact{
		ID:          user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Email:       user.Email,
		AvatarImage: user.AvatarImage,
		IsAvatarSet: user.IsAvatarSet,
	}
}
