package auth

import (
	"context"
	"sync"
)

var _ UserStore = (*storeMock)(nil)

type storeMock struct {
	Users   map[string]UserRecord
	LoadErr error
	mutex   sync.Mutex
}

func newStoreMock() *storeMock {
	return &storeMock{
		Users: make(map[string]UserRecord),
	}
}

func (s *storeMock) AddUser(u UserRecord) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Users[u.Username] = u
}

func (s *storeMock) LoadUsers(_ context.Context) ([]UserRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	users := make([]UserRecord, 0, len(s.Users))
	for _, u := range s.Users {
		users = append(users, u)
	}
	return users, nil
}

func (s *storeMock) FindByUsername(_ context.Context, username string) (UserRecord, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.LoadErr != nil {
		return UserRecord{}, false, s.LoadErr
	}

	u, ok := s.Users[username]
	return u, ok, nil
}
