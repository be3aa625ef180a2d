package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// Evidence is a seeded identity directory and evidence ledger.
type Evidence struct {
	mu           sync.RWMutex
	users        map[string]messaging.User
	candidates   map[string]messaging.CandidateProfile
	recruiters   map[string]messaging.RecruiterProfile
	jobs         map[string]messaging.Job
	applications map[string]messaging.Application
	unlocks      []messaging.UnlockTransaction
}

var (
	_ messaging.EvidenceSource    = (*Evidence)(nil)
	_ messaging.IdentityDirectory = (*Evidence)(nil)
)

func NewEvidence() *Evidence {
	return &Evidence{
		users:        make(map[string]messaging.User),
		candidates:   make(map[string]messaging.CandidateProfile),
		recruiters:   make(map[string]messaging.RecruiterProfile),
		jobs:         make(map[string]messaging.Job),
		applications: make(map[string]messaging.Application),
	}
}

// ===============================================
// Seeding
// ===============================================

func (e *Evidence) AddUser(userID string, role messaging.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.users[userID] = messaging.User{ID: userID, Role: role}
}

// AddCandidate registers a candidate user with a profile.
func (e *Evidence) AddCandidate(userID, fullName, avatar string) messaging.CandidateProfile {
	e.AddUser(userID, messaging.RoleCandidate)

	e.mu.Lock()
	defer e.mu.Unlock()
	profile := messaging.CandidateProfile{ID: "cp-" + userID, UserID: userID, FullName: fullName, Avatar: avatar}
	e.candidates[userID] = profile
	return profile
}

// AddRecruiter registers a recruiter user with a profile and company.
func (e *Evidence) AddRecruiter(userID, fullName string, company messaging.Company) messaging.RecruiterProfile {
	e.AddUser(userID, messaging.RoleRecruiter)

	e.mu.Lock()
	defer e.mu.Unlock()
	profile := messaging.RecruiterProfile{ID: "rp-" + userID, UserID: userID, FullName: fullName, Company: company}
	e.recruiters[userID] = profile
	return profile
}

func (e *Evidence) AddJob(recruiterProfileID, jobID, title string) messaging.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	job := messaging.Job{ID: jobID, RecruiterProfileID: recruiterProfileID, Title: title}
	e.jobs[jobID] = job
	return job
}

func (e *Evidence) AddApplication(candidateProfileID, jobID string, status messaging.ApplicationStatus, appliedAt time.Time) messaging.Application {
	e.mu.Lock()
	defer e.mu.Unlock()
	application := messaging.Application{
		ID:                 uuid.NewString(),
		JobID:              jobID,
		JobTitle:           e.jobs[jobID].Title,
		CandidateProfileID: candidateProfileID,
		Status:             status,
		AppliedAt:          appliedAt,
	}
	e.applications[application.ID] = application
	return application
}

func (e *Evidence) AddUnlock(recruiterUserID, candidateUserID string, at time.Time) messaging.UnlockTransaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	unlock := messaging.UnlockTransaction{
		ID:              uuid.NewString(),
		RecruiterUserID: recruiterUserID,
		CandidateUserID: candidateUserID,
		Category:        messaging.UnlockCategoryProfileUnlock,
		CreatedAt:       at,
	}
	e.unlocks = append(e.unlocks, unlock)
	return unlock
}

// ===============================================
// EvidenceSource
// ===============================================

func notFound(ctx context.Context, what string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, what+" not found", nil, "5f7b9d2e-4a6c-4e8f-a1b3-5a7c9e2f4b6d")
}

func (e *Evidence) RecruiterProfile(ctx context.Context, userID string) (*messaging.RecruiterProfile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	profile, ok := e.recruiters[userID]
	if !ok {
		return nil, notFound(ctx, "recruiter profile")
	}
	return &profile, nil
}

func (e *Evidence) CandidateProfile(ctx context.Context, userID string) (*messaging.CandidateProfile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	profile, ok := e.candidates[userID]
	if !ok {
		return nil, notFound(ctx, "candidate profile")
	}
	return &profile, nil
}

func (e *Evidence) RecruiterJobs(ctx context.Context, recruiterProfileID string) ([]messaging.Job, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var jobs []messaging.Job
	for _, job := range e.jobs {
		if job.RecruiterProfileID == recruiterProfileID {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

func (e *Evidence) ListApplications(ctx context.Context, candidateProfileID string, jobIDs []string) ([]messaging.Application, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	wanted := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		wanted[id] = struct{}{}
	}
	var result []messaging.Application
	for _, a := range e.applications {
		if _, ok := wanted[a.JobID]; ok && a.CandidateProfileID == candidateProfileID {
			result = append(result, a)
		}
	}
	return messaging.SortApplicationsByRecency(result), nil
}

func (e *Evidence) FindUnlock(ctx context.Context, recruiterUserID, candidateUserID string) (*messaging.UnlockTransaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var latest *messaging.UnlockTransaction
	for i := range e.unlocks {
		u := e.unlocks[i]
		if u.RecruiterUserID != recruiterUserID || u.CandidateUserID != candidateUserID {
			continue
		}
		if latest == nil || u.CreatedAt.After(latest.CreatedAt) {
			latest = &u
		}
	}
	return latest, nil
}

func (e *Evidence) ApplicationsByIDs(ctx context.Context, ids []string) ([]messaging.Application, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make([]messaging.Application, 0, len(ids))
	for _, id := range ids {
		if a, ok := e.applications[id]; ok {
			result = append(result, a)
		}
	}
	return result, nil
}

// ===============================================
// IdentityDirectory
// ===============================================

func (e *Evidence) User(ctx context.Context, userID string) (*messaging.User, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	user, ok := e.users[userID]
	if !ok {
		return nil, notFound(ctx, "user")
	}
	return &user, nil
}

func (e *Evidence) DisplayProfile(ctx context.Context, userID string, role messaging.Role) (messaging.DisplayProfile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch role {
	case messaging.RoleCandidate:
		if p, ok := e.candidates[userID]; ok {
			return messaging.CandidateDisplay{FullName: p.FullName, Avatar: p.Avatar}, nil
		}
	case messaging.RoleRecruiter:
		if p, ok := e.recruiters[userID]; ok {
			return messaging.RecruiterDisplay{
				FullName:    p.FullName,
				Avatar:      p.Avatar,
				CompanyName: p.Company.Name,
				CompanyLogo: p.Company.Logo,
			}, nil
		}
	}
	return nil, nil
}
