// Package identity keeps the authoritative in-memory copy of user records.
//
// Records are loaded lazily from the store on a miss and every mutation of a
// persisted field is written through before memory changes, so a failed write
// leaves the cache as it was.
package identity

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"usermanagement_server/internal/dao"
	"usermanagement_server/internal/infrastructure/metrics"
	"usermanagement_server/internal/model"
	"usermanagement_server/pkg/enum/user_info/user_status_enum"
	"usermanagement_server/pkg/errorx"
	"usermanagement_server/pkg/util/random"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxNameAttempts bounds the retries when a generated default name is already taken.
const maxNameAttempts = 10

// Option customises a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithNameGenerator replaces random.GenerateUsername for default names.
func WithNameGenerator(gen func() string) Option {
	return func(c *Cache) { c.newName = gen }
}

// Cache maps user id to record with a secondary name index.
//
// Lock order: writeMu before mu. writeMu serialises every store write of a
// user row so two writers never persist stale copies over each other; mu
// guards the maps and is never held across store I/O.
type Cache struct {
	store dao.Store

	writeMu  sync.Mutex
	createMu sync.Mutex
	mu       sync.RWMutex
	users    map[int64]*model.UserInfo
	names    map[string]int64
	loads    singleflight.Group

	now     func() time.Time
	newName func() string
}

// NewCache creates an empty cache over store.
func NewCache(store dao.Store, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		users:   make(map[int64]*model.UserInfo),
		names:   make(map[string]int64),
		now:     time.Now,
		newName: random.GenerateUsername,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) peek(userId int64) (model.UserInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[userId]
	if !ok {
		return model.UserInfo{}, false
	}
	return *u, true
}

// insert adds row unless the id is already cached, and returns the cached copy either way.
func (c *Cache) insert(row *model.UserInfo) model.UserInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.users[row.UserId]; ok {
		return *existing
	}
	u := *row
	c.users[u.UserId] = &u
	c.names[u.Name] = u.UserId
	metrics.IdentityCacheSize.Set(float64(len(c.users)))
	return u
}

func (c *Cache) evictLocked(userId int64) {
	u, ok := c.users[userId]
	if !ok {
		return
	}
	if c.names[u.Name] == userId {
		delete(c.names, u.Name)
	}
	delete(c.users, userId)
	metrics.IdentityCacheSize.Set(float64(len(c.users)))
}

// GetOrLoad returns the record for userId, reading the store on a miss.
// found is false when the user exists nowhere. Concurrent misses for one id share a single store read.
func (c *Cache) GetOrLoad(ctx context.Context, userId int64) (model.UserInfo, bool, error) {
	if u, ok := c.peek(userId); ok {
		metrics.IdentityCacheHits.Inc()
		return u, true, nil
	}
	metrics.IdentityCacheMisses.Inc()

	v, err, _ := c.loads.Do(strconv.FormatInt(userId, 10), func() (any, error) {
		if u, ok := c.peek(userId); ok {
			return u, nil
		}
		row, err := c.store.GetUserById(ctx, userId)
		if err != nil {
			return nil, err
		}
		return c.insert(row), nil
	})
	if errorx.IsNotFound(err) {
		return model.UserInfo{}, false, nil
	}
	if err != nil {
		return model.UserInfo{}, false, err
	}
	return v.(model.UserInfo), true, nil
}

// GetOrLoadByName is GetOrLoad keyed by the current username.
func (c *Cache) GetOrLoadByName(ctx context.Context, name string) (model.UserInfo, bool, error) {
	c.mu.RLock()
	userId, ok := c.names[name]
	c.mu.RUnlock()
	if ok {
		return c.GetOrLoad(ctx, userId)
	}

	metrics.IdentityCacheMisses.Inc()
	row, err := c.store.GetUserByName(ctx, name)
	if errorx.IsNotFound(err) {
		return model.UserInfo{}, false, nil
	}
	if err != nil {
		return model.UserInfo{}, false, err
	}
	return c.insert(row), true, nil
}

// ResolveUsername maps a username to its user id.
func (c *Cache) ResolveUsername(ctx context.Context, name string) (int64, bool, error) {
	u, found, err := c.GetOrLoadByName(ctx, name)
	if err != nil || !found {
		return 0, false, err
	}
	return u.UserId, true, nil
}

// UsernameExists checks the index, then the store, without loading the owner.
func (c *Cache) UsernameExists(ctx context.Context, name string) (bool, error) {
	c.mu.RLock()
	_, ok := c.names[name]
	c.mu.RUnlock()
	if ok {
		return true, nil
	}
	return c.store.HasUserByName(ctx, name)
}

// CreateDefault persists and caches a new ONLINE user.
// An empty name gets a generated default name.
// It fails with CodeUserExist when the id already exists or the name is taken.
func (c *Cache) CreateDefault(ctx context.Context, userId int64, name string) (model.UserInfo, error) {
	c.createMu.Lock()
	defer c.createMu.Unlock()

	if _, ok := c.peek(userId); ok {
		return model.UserInfo{}, errorx.Newf(errorx.CodeUserExist, "user %d already exists", userId)
	}
	existing, err := c.store.GetUserById(ctx, userId)
	switch {
	case err == nil:
		c.insert(existing)
		return model.UserInfo{}, errorx.Newf(errorx.CodeUserExist, "user %d already exists", userId)
	case !errorx.IsNotFound(err):
		return model.UserInfo{}, err
	}

	if name == "" {
		if name, err = c.freeDefaultName(ctx); err != nil {
			return model.UserInfo{}, err
		}
	} else {
		taken, err := c.UsernameExists(ctx, name)
		if err != nil {
			return model.UserInfo{}, err
		}
		if taken {
			return model.UserInfo{}, errorx.Newf(errorx.CodeUserExist, "name %s already taken", name)
		}
	}

	row := &model.UserInfo{
		UserId:   userId,
		Name:     name,
		LastSeen: c.now(),
		Status:   user_status_enum.ONLINE,
	}
	c.writeMu.Lock()
	err = c.store.SaveUser(ctx, row)
	c.writeMu.Unlock()
	if err != nil {
		return model.UserInfo{}, err
	}
	zap.L().Info("user created", zap.Int64("user_id", userId), zap.String("name", name))
	return c.insert(row), nil
}

func (c *Cache) freeDefaultName(ctx context.Context) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		name := c.newName()
		taken, err := c.UsernameExists(ctx, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", errorx.New(errorx.CodeServerBusy, "could not generate a free default name")
}

// OnSeen records activity for userId, creating the user with a default name on first contact.
// The returned flag is true when a known user went from OFFLINE to ONLINE; only that transition is written through.
// A user created here is already ONLINE, so the flag stays false.
func (c *Cache) OnSeen(ctx context.Context, userId int64) (model.UserInfo, bool, error) {
	// a freshly loaded record may be swept before it is marked; retry then
	for attempt := 0; attempt < 3; attempt++ {
		_, found, err := c.GetOrLoad(ctx, userId)
		if err != nil {
			return model.UserInfo{}, false, err
		}
		if !found {
			_, err = c.CreateDefault(ctx, userId, "")
			if err != nil && errorx.GetCode(err) != errorx.CodeUserExist {
				return model.UserInfo{}, false, err
			}
		}
		u, changed, ok, err := c.markSeen(ctx, userId)
		if err != nil || ok {
			return u, changed, err
		}
	}
	return model.UserInfo{}, false, errorx.Newf(errorx.CodeServerBusy, "user %d evicted while being marked seen", userId)
}

// markSeen reports ok=false when the record is no longer cached.
func (c *Cache) markSeen(ctx context.Context, userId int64) (model.UserInfo, bool, bool, error) {
	c.mu.Lock()
	live, ok := c.users[userId]
	if !ok {
		c.mu.Unlock()
		return model.UserInfo{}, false, false, nil
	}
	now := c.now()
	if live.IsOnline() {
		if now.After(live.LastSeen) {
			live.LastSeen = now
		}
		u := *live
		c.mu.Unlock()
		return u, false, true, nil
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current, ok := c.peek(userId)
	if !ok {
		return model.UserInfo{}, false, false, nil
	}
	if current.IsOnline() {
		return current, false, true, nil
	}
	updated := current
	updated.Status = user_status_enum.ONLINE
	if now.After(updated.LastSeen) {
		updated.LastSeen = now
	}
	if err := c.store.SaveUser(ctx, &updated); err != nil {
		return model.UserInfo{}, false, true, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	live, ok = c.users[userId]
	if !ok {
		return updated, true, true, nil
	}
	live.Status = user_status_enum.ONLINE
	if updated.LastSeen.After(live.LastSeen) {
		live.LastSeen = updated.LastSeen
	}
	return *live, true, true, nil
}

// Rename changes the username of a user, releasing the old name from the index.
// The caller validates newName and checks that it is free.
func (c *Cache) Rename(ctx context.Context, userId int64, newName string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current, found, err := c.GetOrLoad(ctx, userId)
	if err != nil {
		return err
	}
	if !found {
		return errorx.Newf(errorx.CodeUserNotExist, "user %d does not exist", userId)
	}
	if current.Name == newName {
		return nil
	}
	updated := current
	updated.Name = newName
	if err := c.store.SaveUser(ctx, &updated); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	live, ok := c.users[userId]
	if !ok {
		return nil
	}
	if c.names[live.Name] == userId {
		delete(c.names, live.Name)
	}
	live.Name = newName
	c.names[newName] = userId
	return nil
}

// Save writes the cached record of userId back to the store.
func (c *Cache) Save(ctx context.Context, userId int64) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	u, ok := c.peek(userId)
	if !ok {
		return nil
	}
	return c.store.SaveUser(ctx, &u)
}

// SaveAll writes every cached record back; it keeps going past failures and joins them.
func (c *Cache) SaveAll(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var errs []error
	for _, u := range c.snapshot() {
		if err := c.store.SaveUser(ctx, &u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove deletes the user from the store and then from memory.
func (c *Cache) Remove(ctx context.Context, userId int64) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.store.RemoveUser(ctx, userId); err != nil {
		return err
	}
	c.mu.Lock()
	c.evictLocked(userId)
	c.mu.Unlock()
	return nil
}

// Unload marks the user OFFLINE, writes the record back and evicts it.
func (c *Cache) Unload(ctx context.Context, userId int64) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	u, ok := c.peek(userId)
	if !ok {
		return nil
	}
	u.Status = user_status_enum.OFFLINE
	if err := c.store.SaveUser(ctx, &u); err != nil {
		return err
	}
	c.mu.Lock()
	c.evictLocked(userId)
	c.mu.Unlock()
	metrics.IdentityCacheEvictions.Inc()
	return nil
}

// UnloadInactive evicts every user not seen for longer than threshold, after
// writing it back as OFFLINE, and returns the evicted ids in ascending order.
// A user whose write-back fails stays cached; the failures are joined into the error.
func (c *Cache) UnloadInactive(ctx context.Context, threshold time.Duration) ([]int64, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	now := c.now()
	var (
		evicted []int64
		errs    []error
	)
	for _, u := range c.snapshot() {
		if now.Sub(u.LastSeen) <= threshold {
			continue
		}
		seen := u.LastSeen
		u.Status = user_status_enum.OFFLINE
		if err := c.store.SaveUser(ctx, &u); err != nil {
			errs = append(errs, err)
			continue
		}
		c.mu.Lock()
		if live, ok := c.users[u.UserId]; ok && !live.LastSeen.After(seen) {
			c.evictLocked(u.UserId)
			evicted = append(evicted, u.UserId)
		}
		c.mu.Unlock()
	}
	sort.Slice(evicted, func(i, j int) bool { return evicted[i] < evicted[j] })
	metrics.IdentityCacheEvictions.Add(float64(len(evicted)))
	return evicted, errors.Join(errs...)
}

func (c *Cache) snapshot() []model.UserInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.UserInfo, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, *u)
	}
	return out
}

// GetPublic returns the public view of userId.
func (c *Cache) GetPublic(ctx context.Context, userId int64) (model.PublicUserInfo, bool, error) {
	u, found, err := c.GetOrLoad(ctx, userId)
	if err != nil || !found {
		return model.PublicUserInfo{}, false, err
	}
	return u.ToPublic(), true, nil
}

// GetPublicBatch returns public views in the order of userIds, skipping ids that no longer exist.
func (c *Cache) GetPublicBatch(ctx context.Context, userIds []int64) ([]model.PublicUserInfo, error) {
	out := make([]model.PublicUserInfo, 0, len(userIds))
	for _, id := range userIds {
		u, found, err := c.GetPublic(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, u)
		}
	}
	return out, nil
}

// HasCached reports whether userId is in memory right now.
func (c *Cache) HasCached(userId int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.users[userId]
	return ok
}

// CachedCount returns the number of users in memory.
func (c *Cache) CachedCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}
