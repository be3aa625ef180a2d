package identitycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

type countingDirectory struct {
	userCalls    int
	profileCalls int
	fail         error
}

func (c *countingDirectory) User(_ context.Context, userID string) (*messaging.User, error) {
	c.userCalls++
	if c.fail != nil {
		return nil, c.fail
	}
	return &messaging.User{ID: userID, Role: messaging.RoleCandidate}, nil
}

func (c *countingDirectory) DisplayProfile(_ context.Context, userID string, _ messaging.Role) (messaging.DisplayProfile, error) {
	c.profileCalls++
	if userID == "no-profile" {
		return nil, nil
	}
	return messaging.CandidateDisplay{FullName: "Name of " + userID}, nil
}

func newCached(t *testing.T, next messaging.IdentityDirectory, ttl time.Duration) (*Directory, *time.Time) {
	t.Helper()
	dir, err := New(next, 8, ttl)
	require.NoError(t, err)
	cached := dir.(*Directory)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return clock }
	return cached, &clock
}

func TestNewWithZeroSizeReturnsNext(t *testing.T) {
	next := &countingDirectory{}
	dir, err := New(next, 0, time.Minute)
	require.NoError(t, err)
	assert.Same(t, next, dir)
}

func TestUserIsCachedUntilExpiry(t *testing.T) {
	next := &countingDirectory{}
	dir, clock := newCached(t, next, time.Minute)
	ctx := context.Background()

	_, err := dir.User(ctx, "u1")
	require.NoError(t, err)
	_, err = dir.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.userCalls)

	*clock = clock.Add(2 * time.Minute)
	_, err = dir.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.userCalls)
}

func TestUserErrorsAreNotCached(t *testing.T) {
	next := &countingDirectory{fail: errors.New("boom")}
	dir, _ := newCached(t, next, time.Minute)
	ctx := context.Background()

	_, err := dir.User(ctx, "u1")
	require.Error(t, err)
	_, err = dir.User(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, 2, next.userCalls)
}

func TestDisplayProfileCachesMissingProfile(t *testing.T) {
	next := &countingDirectory{}
	dir, _ := newCached(t, next, time.Minute)
	ctx := context.Background()

	profile, err := dir.DisplayProfile(ctx, "no-profile", messaging.RoleCandidate)
	require.NoError(t, err)
	assert.Nil(t, profile)

	profile, err = dir.DisplayProfile(ctx, "no-profile", messaging.RoleCandidate)
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Equal(t, 1, next.profileCalls)

	profile, err = dir.DisplayProfile(ctx, "u2", messaging.RoleCandidate)
	require.NoError(t, err)
	assert.Equal(t, messaging.CandidateDisplay{FullName: "Name of u2"}, profile)
	assert.Equal(t, 2, next.profileCalls)
}

// ctxAwareDirectory fails lookups whose context is already done.
type ctxAwareDirectory struct{}

func (ctxAwareDirectory) User(ctx context.Context, userID string) (*messaging.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &messaging.User{ID: userID, Role: messaging.RoleRecruiter}, nil
}

func (ctxAwareDirectory) DisplayProfile(ctx context.Context, userID string, _ messaging.Role) (messaging.DisplayProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return messaging.CandidateDisplay{FullName: userID}, nil
}

func TestSharedLookupIgnoresCallerCancellation(t *testing.T) {
	dir, _ := newCached(t, ctxAwareDirectory{}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	user, err := dir.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	profile, err := dir.DisplayProfile(ctx, "u1", messaging.RoleCandidate)
	require.NoError(t, err)
	assert.NotNil(t, profile)
}
