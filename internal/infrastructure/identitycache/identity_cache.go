package identitycache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

type cacheEntry struct {
	user      *messaging.User
	profile   messaging.DisplayProfile
	expiresAt time.Time
}

// Directory caches user and display-profile lookups in a bounded in-memory LRU.
// Entries expire after ttl so profile edits show up in the inbox. Concurrent
// misses for the same key share one lookup.
type Directory struct {
	next   messaging.IdentityDirectory
	users  *lru.Cache
	views  *lru.Cache
	ttl    time.Duration
	now    func() time.Time
	flight singleflight.Group
}

var _ messaging.IdentityDirectory = (*Directory)(nil)

// New wraps next. A size of zero disables caching and returns next unchanged.
func New(next messaging.IdentityDirectory, size int, ttl time.Duration) (messaging.IdentityDirectory, error) {
	if size <= 0 {
		return next, nil
	}
	users, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	views, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Directory{
		next:  next,
		users: users,
		views: views,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

func (d *Directory) lookup(cache *lru.Cache, key string) (cacheEntry, bool) {
	val, found := cache.Get(key)
	if !found {
		return cacheEntry{}, false
	}
	entry := val.(cacheEntry)
	if d.now().After(entry.expiresAt) {
		cache.Remove(key)
		return cacheEntry{}, false
	}
	return entry, true
}

// User implements messaging.IdentityDirectory. Errors are not cached.
func (d *Directory) User(ctx context.Context, userID string) (*messaging.User, error) {
	if entry, ok := d.lookup(d.users, userID); ok {
		return entry.user, nil
	}
	// joiners share the lookup, so it must not end with the leader's request
	shared := context.WithoutCancel(ctx)
	val, err, _ := d.flight.Do("user:"+userID, func() (any, error) {
		user, err := d.next.User(shared, userID)
		if err != nil {
			return nil, err
		}
		d.users.Add(userID, cacheEntry{user: user, expiresAt: d.now().Add(d.ttl)})
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*messaging.User), nil
}

// DisplayProfile implements messaging.IdentityDirectory. A missing profile is cached as nil.
func (d *Directory) DisplayProfile(ctx context.Context, userID string, role messaging.Role) (messaging.DisplayProfile, error) {
	key := string(role) + ":" + userID
	if entry, ok := d.lookup(d.views, key); ok {
		return entry.profile, nil
	}
	shared := context.WithoutCancel(ctx)
	val, err, _ := d.flight.Do("view:"+key, func() (any, error) {
		profile, err := d.next.DisplayProfile(shared, userID, role)
		if err != nil {
			return nil, err
		}
		d.views.Add(key, cacheEntry{profile: profile, expiresAt: d.now().Add(d.ttl)})
		return cacheEntry{profile: profile}, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(cacheEntry).profile, nil
}
