package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// RootFolderName is the name given to the folder created with each account.
const RootFolderName = "My Drive"

// StorageUsage is the service-level DTO for a user's quota standing.
type StorageUsage struct {
	Used    int64   `json:"used"`
	Limit   int64   `json:"limit"`
	Percent float64 `json:"percent"`
}

// UserService defines account use cases. Authentication mechanics (sessions,
// tokens) live outside the core; callers arrive as resolved actor ids.
type UserService interface {
	// Register creates an account with a bcrypt credential hash, the default
	// storage quota, and the account's root folder.
	Register(ctx context.Context, username, email, password string) (*model.User, error)

	// Get returns a user by id.
	Get(ctx context.Context, id string) (*model.User, error)

	// Usage returns the actor's storage quota standing.
	Usage(ctx context.Context, actorID string) (*StorageUsage, error)
}

type userService struct {
	users        repository.UserRepository
	folders      repository.FolderRepository
	activity     ActivityService
	defaultQuota int64
}

// NewUserService constructs a new UserService. defaultQuota is the
// storage_limit assigned at registration.
func NewUserService(users repository.UserRepository, folders repository.FolderRepository, activity ActivityService, defaultQuota int64) UserService {
	if defaultQuota <= 0 {
		defaultQuota = model.DefaultStorageLimit
	}
	return &userService{users: users, folders: folders, activity: activity, defaultQuota: defaultQuota}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if utf8.RuneCountInString(username) > MaxNameLen {
		return nil, fmt.Errorf("%w: username too long", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		StorageUsed:  0,
		StorageLimit: s.defaultQuota,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// The root folder belongs to the account from its first moment; every
	// other folder descends from it.
	root, err := s.folders.Create(ctx, &model.Folder{
		ID:        uuid.New().String(),
		Name:      RootFolderName,
		OwnerID:   user.ID,
		ParentID:  nil,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create root folder: %w", err)
	}

	s.activity.Record(ctx, user.ID, model.ActionRegister, nil, &root.ID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Usage(ctx context.Context, actorID string) (*StorageUsage, error) {
	user, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	usage := &StorageUsage{Used: user.StorageUsed, Limit: user.StorageLimit}
	if user.StorageLimit > 0 {
		usage.Percent = float64(user.StorageUsed) / float64(user.StorageLimit) * 100
	}
	return usage, nil
}
