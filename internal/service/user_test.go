package service

import (
	"context"
	"database/sql"
	"testing"

	"filevault/internal/model"
	repoMocks "filevault/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(defaultQuota int64) (UserService, *repoMocks.MockUserRepository, *repoMocks.MockFolderRepository) {
	users := new(repoMocks.MockUserRepository)
	folders := new(repoMocks.MockFolderRepository)
	acts := new(repoMocks.MockActivityRepository)
	acts.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewUserService(users, folders, NewActivityService(acts), defaultQuota), users, folders
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		svc, users, folders := newUserService(1 << 30)

		users.On("FindByEmail", ctx, "alice@example.com").Return(nil, sql.ErrNoRows)

		var storedHash string
		users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			storedHash = u.PasswordHash
			return u.Username == "alice" && u.StorageUsed == 0 && u.StorageLimit == 1<<30
		})).Return(&model.User{ID: "user-id", Username: "alice", Email: "alice@example.com"}, nil)

		folders.On("Create", ctx, mock.MatchedBy(func(f *model.Folder) bool {
			return f.Name == RootFolderName && f.OwnerID == "user-id" && f.ParentID == nil
		})).Return(&model.Folder{ID: "root-id", Name: RootFolderName, OwnerID: "user-id"}, nil)

		user, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret!pw")

		assert.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "user-id", user.ID)
		// The credential is stored as a bcrypt hash, never verbatim.
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("s3cret!pw")))
		users.AssertExpectations(t)
		folders.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, users, _ := newUserService(1 << 30)

		users.On("FindByEmail", ctx, "alice@example.com").
			Return(&model.User{ID: "existing"}, nil)

		user, err := svc.Register(ctx, "other", "alice@example.com", "s3cret!pw")

		assert.ErrorIs(t, err, ErrConflict)
		assert.Nil(t, user)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _, _ := newUserService(1 << 30)

		user, err := svc.Register(ctx, "", "alice@example.com", "pw")

		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, user)
	})
}

func TestUserService_Usage(t *testing.T) {
	ctx := context.Background()

	t.Run("percent is derived", func(t *testing.T) {
		svc, users, _ := newUserService(0)

		users.On("FindByID", ctx, "user-id").
			Return(&model.User{ID: "user-id", StorageUsed: 256, StorageLimit: 1024}, nil)

		usage, err := svc.Usage(ctx, "user-id")

		assert.NoError(t, err)
		require.NotNil(t, usage)
		assert.Equal(t, int64(256), usage.Used)
		assert.Equal(t, int64(1024), usage.Limit)
		assert.InDelta(t, 25.0, usage.Percent, 0.001)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, users, _ := newUserService(0)

		users.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

		usage, err := svc.Usage(ctx, "gone")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, usage)
	})
}
