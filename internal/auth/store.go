package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/TretaGroup/tretaweb/internal/telemetry/tracing"
)

var ErrStoreUnavailable = errors.New("user store unavailable")

var _ UserStore = (*FileStore)(nil)

type UserStore interface {
	LoadUsers(ctx context.Context) ([]UserRecord, error)
	FindByUsername(ctx context.Context, username string) (UserRecord, bool, error)
}

// FileStore reads the user collection from a JSON file on every call. The
// file is small (a handful of records) and maintained out-of-band, so no
// caching or write path exists here.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("users file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

func (fs *FileStore) LoadUsers(ctx context.Context) (_ []UserRecord, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "userStore.loadUsers")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	usersJson, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	var users []UserRecord
	if err := json.Unmarshal(usersJson, &users); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	return users, nil
}

// FindByUsername does a case-sensitive exact match. A missing user is not an
// error, the caller must not be able to distinguish it from a bad password.
func (fs *FileStore) FindByUsername(ctx context.Context, username string) (UserRecord, bool, error) {
	users, err := fs.LoadUsers(ctx)
	if err != nil {
		return UserRecord{}, false, err
	}

	for _, u := range users {
		if u.Username == username {
			return u, true, nil
		}
	}

	return UserRecord{}, false, nil
}
