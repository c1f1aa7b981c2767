package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"snappy/errors"
)

type IUserRepository interface {
	CreateUser(user User) (string, error)
	GetUserByUsername(username string) (User, error)
	UpdateAvatar(username, image string) (User, error)
	ListUsers(excludeUsername string) ([]User, error)
}

// User is the repository-level representation of an account. PasswordHash
// is the encoded argon2id string, never the plain password.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"passwordHash"`
	AvatarImage  string    `json:"avatarImage,omitempty"`
	IsAvatarSet  bool      `json:"isAvatarSet"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

func userKey(username string) []byte {
	return []byte("user:" + strings.ToLower(strings.TrimSpace(username)))
}

// emailKey is a secondary uniqueness marker pointing back at the username.
func emailKey(email string) []byte {
	return []byte("user_email:" + strings.ToLower(strings.TrimSpace(email)))
}

// CreateUser persists a new account. Username and email must both be free;
// the write of the record and its email marker is one transaction.
func (u UserRepository) CreateUser(user User) (string, error) {
	user.ID = uuid.New().String()
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(user.Username)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(emailKey(user.Email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(userKey(user.Username), data); err != nil {
			return err
		}
		return txn.Set(emailKey(user.Email), []byte(user.Username))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u UserRepository) GetUserByUsername(username string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateAvatar stores the avatar payload on the user record and returns
// the updated record.
func (u UserRepository) UpdateAvatar(username, image string) (User, error) {
	var user User
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		}); err != nil {
			return err
		}

		user.AvatarImage = image
		user.IsAvatarSet = true

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(username), data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// ListUsers returns every account except the excluded username, for the
// contact list of the chat UI.
func (u UserRepository) ListUsers(excludeUsername string) ([]User, error) {
	exclude := strings.ToLower(strings.TrimSpace(excludeUsername))
	prefix := []byte("user:")

	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			if user.Username == exclude {
				continue
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
