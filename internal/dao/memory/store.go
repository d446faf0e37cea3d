// Package memory is an in-process Store used by tests and the "memory" store driver.
// It counts calls and can be told to fail, which lets tests check that a failed write leaves caches untouched.
package memory

import (
	"context"
	"errors"
	"sync"

	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/errorx"
)

// ErrInjected is the cause attached to injected failures.
var ErrInjected = errors.New("injected store failure")

// Stats counts store calls by kind.
type Stats struct {
	UserLoads    int
	UserSaves    int
	UserRemoves  int
	RequestLoads int
	RequestSaves int
	RequestDrops int
}

// Store keeps rows in maps guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	users    map[int64]model.UserInfo
	requests map[string]model.FriendRequest
	stats    Stats

	failOnSave bool
	failOnLoad bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]model.UserInfo),
		requests: make(map[string]model.FriendRequest),
	}
}

// FailOnSave makes every write fail until reset.
func (s *Store) FailOnSave(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOnSave = fail
}

// FailOnLoad makes every read fail until reset.
func (s *Store) FailOnLoad(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOnLoad = fail
}

// Stats returns a snapshot of the call counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ResetStats zeroes the call counters.
func (s *Store) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
}

// Seed inserts rows directly, bypassing counters and failure injection.
func (s *Store) Seed(users []model.UserInfo, requests []model.FriendRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.UserId] = u
	}
	for _, r := range requests {
		s.requests[r.RequestId] = r
	}
}

// Requests returns every stored row; for assertions.
func (s *Store) Requests() []model.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FriendRequest, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r)
	}
	return out
}

// Request returns the row with the given id, if any.
func (s *Store) Request(requestId string) (model.FriendRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestId]
	return r, ok
}

// User returns the stored row for userId, if any.
func (s *Store) User(userId int64) (model.UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userId]
	return u, ok
}

func (s *Store) loadErr() error {
	if s.failOnLoad {
		return errorx.Wrap(ErrInjected, errorx.CodeDBError, "memory load")
	}
	return nil
}

func (s *Store) saveErr() error {
	if s.failOnSave {
		return errorx.Wrap(ErrInjected, errorx.CodeDBError, "memory save")
	}
	return nil
}

func (s *Store) GetUserById(ctx context.Context, userId int64) (*model.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.UserLoads++
	if err := s.loadErr(); err != nil {
		return nil, err
	}
	u, ok := s.users[userId]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "user %d not found", userId)
	}
	return &u, nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*model.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.UserLoads++
	if err := s.loadErr(); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Name == name {
			found := u
			return &found, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "user %s not found", name)
}

func (s *Store) HasUserByName(ctx context.Context, name string) (bool, error) {
	_, err := s.GetUserByName(ctx, name)
	if errorx.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) SaveUser(ctx context.Context, user *model.UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.UserSaves++
	if err := s.saveErr(); err != nil {
		return err
	}
	for id, u := range s.users {
		if id != user.UserId && u.Name == user.Name {
			return errorx.Newf(errorx.CodeDBError, "name %s already used by user %d", user.Name, id)
		}
	}
	s.users[user.UserId] = *user
	return nil
}

func (s *Store) RemoveUser(ctx context.Context, userId int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.UserRemoves++
	if err := s.saveErr(); err != nil {
		return err
	}
	delete(s.users, userId)
	return nil
}

func (s *Store) GetFriendRequestsForUser(ctx context.Context, userId int64) ([]model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.RequestLoads++
	if err := s.loadErr(); err != nil {
		return nil, err
	}
	var out []model.FriendRequest
	for _, r := range s.requests {
		if r.SenderId == userId || r.ReceiverId == userId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) SaveFriendRequests(ctx context.Context, requests []model.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.RequestSaves++
	if err := s.saveErr(); err != nil {
		return err
	}
	for _, r := range requests {
		s.requests[r.RequestId] = r
	}
	return nil
}

func (s *Store) RemoveFriendRequestsById(ctx context.Context, requestIds []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.RequestDrops++
	if err := s.saveErr(); err != nil {
		return err
	}
	for _, id := range requestIds {
		delete(s.requests, id)
	}
	return nil
}

func (s *Store) RemoveAllUserFriendRequests(ctx context.Context, userId int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.RequestDrops++
	if err := s.saveErr(); err != nil {
		return err
	}
	for id, r := range s.requests {
		if r.SenderId == userId || r.ReceiverId == userId {
			delete(s.requests, id)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
