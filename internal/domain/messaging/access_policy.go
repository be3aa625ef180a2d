package messaging

import (
	"context"

	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// ReasonCode explains an access decision to the caller.
type ReasonCode string

const (
	ReasonRecruiterProfileNotFound ReasonCode = "RECRUITER_PROFILE_NOT_FOUND"
	ReasonCandidateProfileNotFound ReasonCode = "CANDIDATE_PROFILE_NOT_FOUND"
	ReasonHasApplication           ReasonCode = "HAS_APPLICATION"
	ReasonProfileUnlocked          ReasonCode = "PROFILE_UNLOCKED"
	ReasonNoAccess                 ReasonCode = "NO_ACCESS"
)

type AccessDecision struct {
	CanMessage bool       `json:"canMessage"`
	Reason     ReasonCode `json:"reason"`
}

func allow(reason ReasonCode) AccessDecision { return AccessDecision{CanMessage: true, Reason: reason} }
func deny(reason ReasonCode) AccessDecision  { return AccessDecision{CanMessage: false, Reason: reason} }

// AccessPolicy decides whether a recruiter may open a conversation with a candidate.
// It only reads evidence and is evaluated on every creation attempt.
type AccessPolicy struct {
	evidence EvidenceSource
}

func NewAccessPolicy(evidence EvidenceSource) *AccessPolicy {
	return &AccessPolicy{evidence: evidence}
}

// Evaluate applies the rules in order; the first match wins.
func (p *AccessPolicy) Evaluate(ctx context.Context, recruiterUserID, candidateUserID string) (AccessDecision, error) {
	recruiter, err := p.evidence.RecruiterProfile(ctx, recruiterUserID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return deny(ReasonRecruiterProfileNotFound), nil
		}
		return AccessDecision{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load recruiter profile")
	}

	candidate, err := p.evidence.CandidateProfile(ctx, candidateUserID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return deny(ReasonCandidateProfileNotFound), nil
		}
		return AccessDecision{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load candidate profile")
	}

	hasApplication, err := p.hasQualifyingApplication(ctx, recruiter.ID, candidate.ID)
	if err != nil {
		return AccessDecision{}, err
	}
	if hasApplication {
		return allow(ReasonHasApplication), nil
	}

	unlock, err := p.evidence.FindUnlock(ctx, recruiterUserID, candidateUserID)
	if err != nil {
		return AccessDecision{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to look up profile unlock")
	}
	if unlock != nil {
		return allow(ReasonProfileUnlocked), nil
	}

	return deny(ReasonNoAccess), nil
}

func (p *AccessPolicy) hasQualifyingApplication(ctx context.Context, recruiterProfileID, candidateProfileID string) (bool, error) {
	jobs, err := p.evidence.RecruiterJobs(ctx, recruiterProfileID)
	if err != nil {
		return false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list recruiter jobs")
	}
	if len(jobs) == 0 {
		return false, nil
	}

	jobIDs := functional.Map(jobs, func(j Job) string { return j.ID })
	applications, err := p.evidence.ListApplications(ctx, candidateProfileID, jobIDs)
	if err != nil {
		return false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list applications")
	}

	return functional.Any(applications, func(a Application) bool {
		return a.Status.GrantsMessaging()
	}), nil
}
