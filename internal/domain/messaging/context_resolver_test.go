package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/inmemory"
)

func fixedClock(t time.Time) messaging.Clock {
	return func() time.Time { return t }
}

func TestContextResolver_ApplicationWinsOverUnlock(t *testing.T) {
	ctx := context.Background()
	evidence := inmemory.NewEvidence()
	r := evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	c := evidence.AddCandidate("cand", "Lan", "")
	evidence.AddJob(r.ID, "job-1", "Backend Engineer")
	evidence.AddJob(r.ID, "job-2", "Platform Engineer")
	older := evidence.AddApplication(c.ID, "job-1", messaging.ApplicationStatusPending, baseTime)
	newer := evidence.AddApplication(c.ID, "job-2", messaging.ApplicationStatusOfferDeclined, baseTime.Add(24*time.Hour))
	evidence.AddUnlock("rec", "cand", baseTime.Add(48*time.Hour))

	now := baseTime.Add(72 * time.Hour)
	resolved, err := messaging.NewContextResolver(evidence, fixedClock(now)).Resolve(ctx, "rec", "cand")
	require.NoError(t, err)
	require.NotNil(t, resolved)

	assert.Equal(t, messaging.ContextTypeApplication, resolved.Type)
	assert.Equal(t, newer.ID, resolved.ContextID)
	assert.Equal(t, []string{newer.ID, older.ID}, resolved.ApplicationIDs)
	assert.Equal(t, "Platform Engineer (+1 vị trí khác)", resolved.Title)
	assert.Contains(t, resolved.Title, "(+1")
	assert.Equal(t, now, resolved.AttachedAt)
}

func TestContextResolver_SingleApplicationTitle(t *testing.T) {
	evidence := inmemory.NewEvidence()
	r := evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	c := evidence.AddCandidate("cand", "Lan", "")
	evidence.AddJob(r.ID, "job-1", "Backend Engineer")
	evidence.AddApplication(c.ID, "job-1", messaging.ApplicationStatusPending, baseTime)

	resolved, err := messaging.NewContextResolver(evidence, fixedClock(baseTime)).Resolve(context.Background(), "rec", "cand")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "Backend Engineer", resolved.Title)
	assert.Len(t, resolved.ApplicationIDs, 1)
}

func TestContextResolver_ProfileUnlock(t *testing.T) {
	evidence := inmemory.NewEvidence()
	evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	evidence.AddCandidate("cand", "Lan", "")
	evidence.AddUnlock("rec", "cand", baseTime)
	latest := evidence.AddUnlock("rec", "cand", baseTime.Add(time.Hour))

	resolved, err := messaging.NewContextResolver(evidence, fixedClock(baseTime)).Resolve(context.Background(), "rec", "cand")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, messaging.ContextTypeProfileUnlock, resolved.Type)
	assert.Equal(t, latest.ID, resolved.ContextID)
	assert.Equal(t, messaging.ProfileUnlockTitle, resolved.Title)
	assert.Empty(t, resolved.ApplicationIDs)
}

func TestContextResolver_NoEvidence(t *testing.T) {
	evidence := inmemory.NewEvidence()
	evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	evidence.AddCandidate("cand", "Lan", "")

	resolved, err := messaging.NewContextResolver(evidence, nil).Resolve(context.Background(), "rec", "cand")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestContextResolver_MissingProfileFallsBackToUnlock(t *testing.T) {
	evidence := inmemory.NewEvidence()
	evidence.AddUser("rec", messaging.RoleRecruiter)
	evidence.AddCandidate("cand", "Lan", "")
	evidence.AddUnlock("rec", "cand", baseTime)

	resolved, err := messaging.NewContextResolver(evidence, nil).Resolve(context.Background(), "rec", "cand")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, messaging.ContextTypeProfileUnlock, resolved.Type)
}

func TestContextResolver_ResolveForJob(t *testing.T) {
	ctx := context.Background()
	evidence := inmemory.NewEvidence()
	r := evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	c := evidence.AddCandidate("cand", "Lan", "")
	evidence.AddJob(r.ID, "job-1", "Backend Engineer")
	evidence.AddJob(r.ID, "job-2", "Platform Engineer")
	first := evidence.AddApplication(c.ID, "job-1", messaging.ApplicationStatusPending, baseTime)
	evidence.AddApplication(c.ID, "job-2", messaging.ApplicationStatusPending, baseTime.Add(time.Hour))
	evidence.AddUnlock("rec", "cand", baseTime)

	resolver := messaging.NewContextResolver(evidence, fixedClock(baseTime))

	resolved, err := resolver.ResolveForJob(ctx, "rec", "cand", "job-1")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, []string{first.ID}, resolved.ApplicationIDs)
	assert.Equal(t, "Backend Engineer", resolved.Title)

	resolved, err = resolver.ResolveForJob(ctx, "rec", "cand", "job-unknown")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, messaging.ContextTypeProfileUnlock, resolved.Type)
}

func TestContextResolver_IsSideEffectFree(t *testing.T) {
	evidence := inmemory.NewEvidence()
	r := evidence.AddRecruiter("rec", "Minh", messaging.Company{Name: "Acme"})
	c := evidence.AddCandidate("cand", "Lan", "")
	evidence.AddJob(r.ID, "job-1", "Backend Engineer")
	evidence.AddApplication(c.ID, "job-1", messaging.ApplicationStatusPending, baseTime)

	resolver := messaging.NewContextResolver(evidence, fixedClock(baseTime))
	first, err := resolver.Resolve(context.Background(), "rec", "cand")
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), "rec", "cand")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSortApplicationsByRecency_DoesNotMutateInput(t *testing.T) {
	input := []messaging.Application{
		{ID: "old", AppliedAt: baseTime},
		{ID: "new", AppliedAt: baseTime.Add(time.Hour)},
	}
	sorted := messaging.SortApplicationsByRecency(input)
	assert.Equal(t, "new", sorted[0].ID)
	assert.Equal(t, "old", input[0].ID)
}
