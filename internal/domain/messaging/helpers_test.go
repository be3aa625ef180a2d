package messaging_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/inmemory"
	"github.com/hirelink/messaging-api/internal/infrastructure/lock"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// tickClock advances by one second on every read so consecutive sends are strictly ordered.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	evidence      *inmemory.Evidence
	conversations *inmemory.ConversationStore
	messages      *inmemory.MessageStore
	service       *messaging.Service
	clock         *tickClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	evidence := inmemory.NewEvidence()
	return newFixtureWithEvidence(t, evidence, evidence)
}

func newFixtureWithEvidence(t *testing.T, evidence messaging.EvidenceSource, seeded *inmemory.Evidence) *fixture {
	t.Helper()

	clock := &tickClock{now: baseTime}
	conversations := inmemory.NewConversationStore()
	messages := inmemory.NewMessageStore()
	log := zerolog.Nop()

	service := messaging.NewService(
		conversations,
		seeded,
		evidence,
		messaging.NewAccessPolicy(evidence),
		messaging.NewContextResolver(evidence, clock.Now),
		messaging.NewMessageService(conversations, messages, inmemory.Transactor{}, log, clock.Now),
		messaging.NewConversationListProjector(conversations, messages, seeded, evidence, log),
		lock.NoopPairLocker{},
		log,
		clock.Now,
	)
	require.NotNil(t, service)

	return &fixture{
		evidence:      seeded,
		conversations: conversations,
		messages:      messages,
		service:       service,
		clock:         clock,
	}
}

// recruiterWithJob seeds a recruiter owning one job and returns the recruiter profile.
func (f *fixture) recruiterWithJob(userID, companyName, jobID, jobTitle string) messaging.RecruiterProfile {
	profile := f.evidence.AddRecruiter(userID, "Recruiter "+userID, messaging.Company{Name: companyName, Logo: companyName + ".png"})
	f.evidence.AddJob(profile.ID, jobID, jobTitle)
	return profile
}

// failingEvidence wraps an evidence source and fails application lookups.
type failingEvidence struct {
	messaging.EvidenceSource
	err error
}

func (f failingEvidence) ListApplications(ctx context.Context, candidateProfileID string, jobIDs []string) ([]messaging.Application, error) {
	return nil, f.err
}
