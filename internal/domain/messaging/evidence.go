package messaging

import (
	"context"
	"time"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type CandidateProfile struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	FullName string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

type Company struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type RecruiterProfile struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	FullName string  `json:"fullname"`
	Avatar   string  `json:"avatar"`
	Company  Company `json:"company"`
}

type Job struct {
	ID                 string `json:"id"`
	RecruiterProfileID string `json:"recruiter_profile_id"`
	Title              string `json:"title"`
}

// ApplicationStatus is the lifecycle state of a candidate application.
type ApplicationStatus string

const (
	ApplicationStatusPending            ApplicationStatus = "PENDING"
	ApplicationStatusReviewing          ApplicationStatus = "REVIEWING"
	ApplicationStatusSuitable           ApplicationStatus = "SUITABLE"
	ApplicationStatusScheduledInterview ApplicationStatus = "SCHEDULED_INTERVIEW"
	ApplicationStatusInterviewed        ApplicationStatus = "INTERVIEWED"
	ApplicationStatusOfferSent          ApplicationStatus = "OFFER_SENT"
	ApplicationStatusOfferDeclined      ApplicationStatus = "OFFER_DECLINED"
	ApplicationStatusAccepted           ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected           ApplicationStatus = "REJECTED"
)

var messagingStatuses = map[ApplicationStatus]bool{
	ApplicationStatusPending:            true,
	ApplicationStatusReviewing:          true,
	ApplicationStatusScheduledInterview: true,
	ApplicationStatusInterviewed:        true,
	ApplicationStatusAccepted:           true,
	ApplicationStatusRejected:           true,
}

// GrantsMessaging reports whether an application in this status lets the recruiter
// contact the candidate.
func (s ApplicationStatus) GrantsMessaging() bool {
	return messagingStatuses[s]
}

type Application struct {
	ID                 string            `json:"id"`
	JobID              string            `json:"job_id"`
	JobTitle           string            `json:"job_title"`
	CandidateProfileID string            `json:"candidate_profile_id"`
	Status             ApplicationStatus `json:"status"`
	AppliedAt          time.Time         `json:"applied_at"`
}

const UnlockCategoryProfileUnlock = "PROFILE_UNLOCK"

// UnlockTransaction is a recruiter's paid profile unlock for one candidate.
type UnlockTransaction struct {
	ID              string    `json:"id"`
	RecruiterUserID string    `json:"user_id"`
	CandidateUserID string    `json:"candidate_id"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"`
}

// EvidenceSource reads the application and credit ledgers owned by other services.
// Profile lookups return a NOT_FOUND PlatformError when the profile is missing.
type EvidenceSource interface {
	RecruiterProfile(ctx context.Context, userID string) (*RecruiterProfile, error)
	CandidateProfile(ctx context.Context, userID string) (*CandidateProfile, error)
	RecruiterJobs(ctx context.Context, recruiterProfileID string) ([]Job, error)
	// ListApplications returns the candidate's applications against the given jobs, with JobTitle filled.
	ListApplications(ctx context.Context, candidateProfileID string, jobIDs []string) ([]Application, error)
	// FindUnlock returns nil, nil when the recruiter never unlocked the candidate.
	FindUnlock(ctx context.Context, recruiterUserID, candidateUserID string) (*UnlockTransaction, error)
	ApplicationsByIDs(ctx context.Context, ids []string) ([]Application, error)
}
