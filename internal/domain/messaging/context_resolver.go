package messaging

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

const (
	ProfileUnlockTitle     = "Mở khóa hồ sơ"
	otherPositionsTemplate = "%s (+%d vị trí khác)"
)

// ContextResolver derives the context of a recruiter/candidate conversation from
// the evidence ledgers. An application always wins over a profile unlock.
type ContextResolver struct {
	evidence EvidenceSource
	now      Clock
}

func NewContextResolver(evidence EvidenceSource, now Clock) *ContextResolver {
	if now == nil {
		now = time.Now
	}
	return &ContextResolver{evidence: evidence, now: now}
}

// Resolve returns nil when neither an application nor an unlock links the two users.
func (r *ContextResolver) Resolve(ctx context.Context, recruiterUserID, candidateUserID string) (*Context, error) {
	return r.resolve(ctx, recruiterUserID, candidateUserID, "")
}

// ResolveForJob only considers applications to jobID. Without one it falls back
// to the profile unlock.
func (r *ContextResolver) ResolveForJob(ctx context.Context, recruiterUserID, candidateUserID, jobID string) (*Context, error) {
	return r.resolve(ctx, recruiterUserID, candidateUserID, jobID)
}

func (r *ContextResolver) resolve(ctx context.Context, recruiterUserID, candidateUserID, jobID string) (*Context, error) {
	applications, err := r.applications(ctx, recruiterUserID, candidateUserID, jobID)
	if err != nil {
		return nil, err
	}
	if len(applications) > 0 {
		return ApplicationContext(applications, r.now().UTC()), nil
	}

	unlock, err := r.evidence.FindUnlock(ctx, recruiterUserID, candidateUserID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to look up profile unlock")
	}
	if unlock == nil {
		return nil, nil
	}

	return &Context{
		Type:       ContextTypeProfileUnlock,
		ContextID:  unlock.ID,
		Title:      ProfileUnlockTitle,
		AttachedAt: r.now().UTC(),
	}, nil
}

// applications returns every application of the candidate to the recruiter's jobs,
// or to jobID alone when it is set. A missing profile on either side yields none.
func (r *ContextResolver) applications(ctx context.Context, recruiterUserID, candidateUserID, jobID string) ([]Application, error) {
	recruiter, err := r.evidence.RecruiterProfile(ctx, recruiterUserID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load recruiter profile")
	}
	candidate, err := r.evidence.CandidateProfile(ctx, candidateUserID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load candidate profile")
	}

	jobs, err := r.evidence.RecruiterJobs(ctx, recruiter.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list recruiter jobs")
	}
	if jobID != "" {
		jobs = functional.Filter(jobs, func(j Job) bool { return j.ID == jobID })
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	applications, err := r.evidence.ListApplications(ctx, candidate.ID, functional.Map(jobs, func(j Job) string { return j.ID }))
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list applications")
	}
	return applications, nil
}

// ApplicationContext builds an APPLICATION context from a non-empty set of applications.
func ApplicationContext(applications []Application, attachedAt time.Time) *Context {
	sorted := SortApplicationsByRecency(applications)
	latest := sorted[0]

	title := latest.JobTitle
	if extra := len(sorted) - 1; extra > 0 {
		title = fmt.Sprintf(otherPositionsTemplate, latest.JobTitle, extra)
	}

	return &Context{
		Type:           ContextTypeApplication,
		ContextID:      latest.ID,
		ApplicationIDs: functional.Map(sorted, func(a Application) string { return a.ID }),
		Title:          title,
		AttachedAt:     attachedAt,
	}
}

// SortApplicationsByRecency returns a copy sorted by AppliedAt, newest first.
func SortApplicationsByRecency(applications []Application) []Application {
	sorted := make([]Application, len(applications))
	copy(sorted, applications)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AppliedAt.After(sorted[j].AppliedAt)
	})
	return sorted
}

// ShouldReplace decides whether an automatically resolved context overwrites the
// stored one. Automatic re-resolution never downgrades an APPLICATION context.
func ShouldReplace(current, next *Context) bool {
	if next == nil {
		return false
	}
	if current == nil {
		return true
	}
	if current.Type == ContextTypeApplication && next.Type != ContextTypeApplication {
		return false
	}
	return !current.SameAs(next)
}
