package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"filevault/internal/cryptox"
	"filevault/internal/model"
	repoMocks "filevault/internal/repository/mocks"
	"filevault/internal/storage"
	storeMocks "filevault/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fileServiceMocks struct {
	files   *repoMocks.MockFileRepository
	folders *repoMocks.MockFolderRepository
	users   *repoMocks.MockUserRepository
	shares  *repoMocks.MockShareRepository
	store   *storeMocks.MockStorage
	acts    *repoMocks.MockActivityRepository
}

func newFileService(codec cryptox.Codec, maxUpload int64) (FileService, *fileServiceMocks) {
	m := &fileServiceMocks{
		files:   new(repoMocks.MockFileRepository),
		folders: new(repoMocks.MockFolderRepository),
		users:   new(repoMocks.MockUserRepository),
		shares:  new(repoMocks.MockShareRepository),
		store:   new(storeMocks.MockStorage),
		acts:    new(repoMocks.MockActivityRepository),
	}
	// Audit writes are incidental to every operation under test.
	m.acts.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	svc := NewFileService(m.files, m.folders, m.users, m.shares, m.store, codec, NewActivityService(m.acts), maxUpload)
	return svc, m
}

func testCodec(t *testing.T) cryptox.Codec {
	t.Helper()
	key := make([]byte, cryptox.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	codec, err := cryptox.New(key)
	require.NoError(t, err)
	return codec
}

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	t.Run("happy path without encryption", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.folders.On("FindByID", ctx, "folder-id").
			Return(&model.Folder{ID: "folder-id", OwnerID: actor}, nil)
		m.users.On("ReserveStorage", ctx, actor, int64(11)).Return(true, nil)
		m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "files/") && strings.HasSuffix(key, ".txt")
		}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.Size == 11 && opt.ContentType == "text/plain"
		})).Return(storage.ObjectInfo{Size: 11}, nil)
		m.files.On("Create", ctx, mock.MatchedBy(func(f *model.File) bool {
			return f.Name == "test.txt" && f.OwnerID == actor && f.Size == 11 && !f.IsEncrypted
		})).Return(func(_ context.Context, f *model.File) *model.File { return f }, nil)

		stored, err := svc.Upload(ctx, actor, strings.NewReader("hello world"), "test.txt", "text/plain", "folder-id")

		assert.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "test.txt", stored.Name)
		assert.False(t, stored.IsEncrypted)
		m.users.AssertExpectations(t)
		m.store.AssertExpectations(t)
	})

	t.Run("encrypts when a codec is configured", func(t *testing.T) {
		codec := testCodec(t)
		svc, m := newFileService(codec, 0)
		plaintext := "secret content"

		m.users.On("ReserveStorage", ctx, actor, int64(len(plaintext))).Return(true, nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			// Ciphertext carries a nonce and auth tag, so it is longer
			// than the plaintext; the record keeps the logical size.
			return opt.Size > int64(len(plaintext))
		})).Return(storage.ObjectInfo{}, nil)
		m.files.On("Create", ctx, mock.MatchedBy(func(f *model.File) bool {
			return f.IsEncrypted && f.Size == int64(len(plaintext))
		})).Return(func(_ context.Context, f *model.File) *model.File { return f }, nil)

		stored, err := svc.Upload(ctx, actor, strings.NewReader(plaintext), "vault.txt", "text/plain", "")

		assert.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, stored.IsEncrypted)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.users.On("ReserveStorage", ctx, actor, int64(11)).Return(false, nil)

		stored, err := svc.Upload(ctx, actor, strings.NewReader("hello world"), "big.bin", "", "")

		assert.ErrorIs(t, err, ErrQuotaExceeded)
		assert.Nil(t, stored)
		m.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blob write failure rolls back the reservation", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.users.On("ReserveStorage", ctx, actor, int64(5)).Return(true, nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("connection refused"))
		m.users.On("ReleaseStorage", ctx, actor, int64(5)).Return(false, nil)

		stored, err := svc.Upload(ctx, actor, strings.NewReader("hello"), "a.txt", "", "")

		assert.Error(t, err)
		assert.Nil(t, stored)
		m.users.AssertExpectations(t)
	})

	t.Run("db save failure rolls back reservation and blob", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.users.On("ReserveStorage", ctx, actor, int64(5)).Return(true, nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
		m.files.On("Create", ctx, mock.Anything).Return(nil, errors.New("constraint violation"))
		m.users.On("ReleaseStorage", ctx, actor, int64(5)).Return(false, nil)
		m.store.On("Delete", ctx, mock.Anything).Return(nil)

		stored, err := svc.Upload(ctx, actor, strings.NewReader("hello"), "a.txt", "", "")

		assert.Error(t, err)
		assert.Nil(t, stored)
		m.users.AssertExpectations(t)
		m.store.AssertExpectations(t)
	})

	t.Run("upload into someone else's folder", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.folders.On("FindByID", ctx, "their-folder").
			Return(&model.Folder{ID: "their-folder", OwnerID: "someone-else"}, nil)

		stored, err := svc.Upload(ctx, actor, strings.NewReader("hello"), "a.txt", "", "their-folder")

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, stored)
		m.users.AssertNotCalled(t, "ReserveStorage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("size cap", func(t *testing.T) {
		svc, m := newFileService(nil, 4)

		stored, err := svc.Upload(ctx, actor, strings.NewReader("hello"), "a.txt", "", "")

		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, stored)
		m.users.AssertNotCalled(t, "ReserveStorage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nil reader", func(t *testing.T) {
		svc, _ := newFileService(nil, 0)

		stored, err := svc.Upload(ctx, actor, nil, "a.txt", "", "")

		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, stored)
	})
}

func TestFileService_Download(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	t.Run("decrypts encrypted content", func(t *testing.T) {
		codec := testCodec(t)
		svc, m := newFileService(codec, 0)

		ciphertext, err := codec.Encrypt([]byte("secret content"))
		require.NoError(t, err)

		f := &model.File{ID: "file-id", Name: "vault.txt", StorageKey: "files/k", OwnerID: actor, IsEncrypted: true, ContentType: "text/plain"}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.store.On("Get", ctx, "files/k").
			Return(io.NopCloser(strings.NewReader(string(ciphertext))), storage.ObjectInfo{}, nil)

		content, err := svc.Download(ctx, actor, "file-id")

		assert.NoError(t, err)
		require.NotNil(t, content)
		assert.Equal(t, "secret content", string(content.Data))
		assert.Equal(t, int64(len("secret content")), content.Size)
	})

	t.Run("encrypted content without a codec", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", StorageKey: "files/k", OwnerID: actor, IsEncrypted: true}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.store.On("Get", ctx, "files/k").
			Return(io.NopCloser(strings.NewReader("garbage")), storage.ObjectInfo{}, nil)

		content, err := svc.Download(ctx, actor, "file-id")

		assert.ErrorIs(t, err, cryptox.ErrCipher)
		assert.Nil(t, content)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		codec := testCodec(t)
		svc, m := newFileService(codec, 0)

		f := &model.File{ID: "file-id", StorageKey: "files/k", OwnerID: actor, IsEncrypted: true}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.store.On("Get", ctx, "files/k").
			Return(io.NopCloser(strings.NewReader("not real ciphertext")), storage.ObjectInfo{}, nil)

		content, err := svc.Download(ctx, actor, "file-id")

		assert.ErrorIs(t, err, cryptox.ErrCipher)
		assert.Nil(t, content)
	})

	t.Run("grantee with view permission", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", StorageKey: "files/k", OwnerID: "owner-id"}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.shares.On("Find", ctx, "file-id", "grantee-id").
			Return(&model.ShareGrant{FileID: "file-id", UserID: "grantee-id", Permission: model.PermissionView}, nil)
		m.store.On("Get", ctx, "files/k").
			Return(io.NopCloser(strings.NewReader("plain")), storage.ObjectInfo{}, nil)

		content, err := svc.Download(ctx, "grantee-id", "file-id")

		assert.NoError(t, err)
		require.NotNil(t, content)
		assert.Equal(t, "plain", string(content.Data))
	})

	t.Run("stranger is denied", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", StorageKey: "files/k", OwnerID: "owner-id"}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.shares.On("Find", ctx, "file-id", "stranger-id").Return(nil, sql.ErrNoRows)

		content, err := svc.Download(ctx, "stranger-id", "file-id")

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, content)
	})

	t.Run("grantee is denied once the file is trashed", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", StorageKey: "files/k", OwnerID: "owner-id", IsTrashed: true}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)

		content, err := svc.Download(ctx, "grantee-id", "file-id")

		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, content)
		m.shares.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing blob", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", StorageKey: "files/k", OwnerID: actor}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.store.On("Get", ctx, "files/k").
			Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)

		content, err := svc.Download(ctx, actor, "file-id")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, content)
	})
}

func TestFileService_TrashRestore(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	t.Run("trash", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil)
		m.files.On("SetTrashed", ctx, "file-id", true).Return(nil)

		assert.NoError(t, svc.Trash(ctx, actor, "file-id"))
		m.files.AssertExpectations(t)
	})

	t.Run("trashing twice conflicts", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor, IsTrashed: true}, nil)

		assert.ErrorIs(t, svc.Trash(ctx, actor, "file-id"), ErrConflict)
	})

	t.Run("only the owner can trash", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: "owner-id"}, nil)

		assert.ErrorIs(t, svc.Trash(ctx, "grantee-id", "file-id"), ErrForbidden)
		m.files.AssertNotCalled(t, "SetTrashed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("restore", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor, IsTrashed: true}, nil)
		m.files.On("SetTrashed", ctx, "file-id", false).Return(nil)

		assert.NoError(t, svc.Restore(ctx, actor, "file-id"))
	})

	t.Run("restoring an active file conflicts", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil)

		assert.ErrorIs(t, svc.Restore(ctx, actor, "file-id"), ErrConflict)
	})
}

func TestFileService_PermanentDelete(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	t.Run("releases quota and removes blob and record", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", OwnerID: actor, StorageKey: "files/k", Size: 1024, IsTrashed: true}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.users.On("ReleaseStorage", ctx, actor, int64(1024)).Return(false, nil)
		m.store.On("Delete", ctx, "files/k").Return(nil)
		m.files.On("Delete", ctx, "file-id").Return(nil)

		assert.NoError(t, svc.PermanentDelete(ctx, actor, "file-id"))
		m.users.AssertExpectations(t)
		m.store.AssertExpectations(t)
		m.files.AssertExpectations(t)
	})

	t.Run("active file must be trashed first", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil)

		assert.ErrorIs(t, svc.PermanentDelete(ctx, actor, "file-id"), ErrConflict)
		m.users.AssertNotCalled(t, "ReleaseStorage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second delete reports not found", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.PermanentDelete(ctx, actor, "file-id"), ErrNotFound)
	})

	t.Run("missing blob is tolerated", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		f := &model.File{ID: "file-id", OwnerID: actor, StorageKey: "files/k", Size: 10, IsTrashed: true}
		m.files.On("FindByID", ctx, "file-id").Return(f, nil)
		m.users.On("ReleaseStorage", ctx, actor, int64(10)).Return(false, nil)
		m.store.On("Delete", ctx, "files/k").Return(storage.ErrObjectNotFound)
		m.files.On("Delete", ctx, "file-id").Return(nil)

		assert.NoError(t, svc.PermanentDelete(ctx, actor, "file-id"))
	})
}

func TestFileService_ToggleStar(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	svc, m := newFileService(nil, 0)

	m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil).Once()
	m.files.On("SetStarred", ctx, "file-id", true).Return(nil).Once()

	starred, err := svc.ToggleStar(ctx, actor, "file-id")
	assert.NoError(t, err)
	assert.True(t, starred)

	m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor, IsStarred: true}, nil).Once()
	m.files.On("SetStarred", ctx, "file-id", false).Return(nil).Once()

	starred, err = svc.ToggleStar(ctx, actor, "file-id")
	assert.NoError(t, err)
	assert.False(t, starred)
	m.files.AssertExpectations(t)
}

func TestFileService_Move(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	t.Run("into owned folder", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil)
		m.folders.On("FindByID", ctx, "target-id").Return(&model.Folder{ID: "target-id", OwnerID: actor}, nil)
		m.files.On("SetFolder", ctx, "file-id", mock.MatchedBy(func(p *string) bool {
			return p != nil && *p == "target-id"
		})).Return(nil)

		assert.NoError(t, svc.Move(ctx, actor, "file-id", "target-id"))
		m.files.AssertExpectations(t)
	})

	t.Run("empty folder id moves to root level", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil)
		m.files.On("SetFolder", ctx, "file-id", (*string)(nil)).Return(nil)

		assert.NoError(t, svc.Move(ctx, actor, "file-id", ""))
	})

	t.Run("into someone else's folder", func(t *testing.T) {
		svc, m := newFileService(nil, 0)

		m.files.On("FindByID", ctx, "file-id").Return(&model.File{ID: "file-id", OwnerID: actor}, nil)
		m.folders.On("FindByID", ctx, "their-id").Return(&model.Folder{ID: "their-id", OwnerID: "someone-else"}, nil)

		assert.ErrorIs(t, svc.Move(ctx, actor, "file-id", "their-id"), ErrForbidden)
	})
}

func TestFileService_Listings(t *testing.T) {
	ctx := context.Background()
	const actor = "owner-id"

	svc, m := newFileService(nil, 0)

	m.files.On("ListTrashed", ctx, actor).Return([]model.File{{ID: "t1", IsTrashed: true}}, nil)
	m.files.On("ListStarred", ctx, actor).Return([]model.File{{ID: "s1", IsStarred: true}}, nil)
	m.files.On("ListRecent", ctx, actor, 5).Return([]model.File{{ID: "r1"}}, nil)

	trashed, err := svc.ListTrash(ctx, actor)
	assert.NoError(t, err)
	assert.Len(t, trashed, 1)

	starred, err := svc.ListStarred(ctx, actor)
	assert.NoError(t, err)
	assert.Len(t, starred, 1)

	// Zero limit falls back to the default of five.
	recent, err := svc.ListRecent(ctx, actor, 0)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
	m.files.AssertExpectations(t)
}
