package dbschema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

// The tables below belong to the profile, job and billing services. They are
// read here and never migrated by this service.

type User struct {
	ID   string `gorm:"type:varchar(64);primaryKey"`
	Role string `gorm:"type:varchar(16);not null"`
}

func (User) TableName() string { return "users" }

func (u *User) EtoD() *messaging.User {
	return &messaging.User{ID: u.ID, Role: messaging.Role(u.Role)}
}

type CandidateProfile struct {
	ID       string `gorm:"type:varchar(64);primaryKey"`
	UserID   string `gorm:"type:varchar(64);uniqueIndex;not null"`
	FullName string `gorm:"column:fullname;type:varchar(256)"`
	Avatar   string `gorm:"type:varchar(1024)"`
}

func (CandidateProfile) TableName() string { return "candidate_profiles" }

func (p *CandidateProfile) EtoD() *messaging.CandidateProfile {
	return &messaging.CandidateProfile{
		ID:       p.ID,
		UserID:   p.UserID,
		FullName: p.FullName,
		Avatar:   p.Avatar,
	}
}

type RecruiterProfile struct {
	ID          string `gorm:"type:varchar(64);primaryKey"`
	UserID      string `gorm:"type:varchar(64);uniqueIndex;not null"`
	FullName    string `gorm:"column:fullname;type:varchar(256)"`
	Avatar      string `gorm:"type:varchar(1024)"`
	CompanyName string `gorm:"type:varchar(256)"`
	CompanyLogo string `gorm:"type:varchar(1024)"`
}

func (RecruiterProfile) TableName() string { return "recruiter_profiles" }

func (p *RecruiterProfile) EtoD() *messaging.RecruiterProfile {
	return &messaging.RecruiterProfile{
		ID:       p.ID,
		UserID:   p.UserID,
		FullName: p.FullName,
		Avatar:   p.Avatar,
		Company: messaging.Company{
			Name: p.CompanyName,
			Logo: p.CompanyLogo,
		},
	}
}

type Job struct {
	ID                 string `gorm:"type:varchar(64);primaryKey"`
	RecruiterProfileID string `gorm:"type:varchar(64);index;not null"`
	Title              string `gorm:"type:varchar(512);not null"`
}

func (Job) TableName() string { return "jobs" }

func (j *Job) EtoD() messaging.Job {
	return messaging.Job{ID: j.ID, RecruiterProfileID: j.RecruiterProfileID, Title: j.Title}
}

type Application struct {
	ID                 string    `gorm:"type:varchar(64);primaryKey"`
	JobID              string    `gorm:"type:varchar(64);index;not null"`
	CandidateProfileID string    `gorm:"type:varchar(64);index;not null"`
	Status             string    `gorm:"type:varchar(32);not null"`
	AppliedAt          time.Time `gorm:"not null"`
}

func (Application) TableName() string { return "applications" }

// ApplicationWithJob is an application row joined with its job title.
type ApplicationWithJob struct {
	Application
	JobTitle string
}

func (a *ApplicationWithJob) EtoD() messaging.Application {
	return messaging.Application{
		ID:                 a.ID,
		JobID:              a.JobID,
		JobTitle:           a.JobTitle,
		CandidateProfileID: a.CandidateProfileID,
		Status:             messaging.ApplicationStatus(a.Status),
		AppliedAt:          a.AppliedAt,
	}
}

// CreditTransaction is a billing ledger row. Profile unlocks keep the candidate
// user id under metadata.candidateId.
type CreditTransaction struct {
	ID        string         `gorm:"type:varchar(64);primaryKey"`
	UserID    string         `gorm:"type:varchar(64);index;not null"`
	Category  string         `gorm:"type:varchar(32);not null"`
	Metadata  datatypes.JSON `gorm:"column:metadata"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }

func (t *CreditTransaction) EtoD(candidateUserID string) *messaging.UnlockTransaction {
	return &messaging.UnlockTransaction{
		ID:              t.ID,
		RecruiterUserID: t.UserID,
		CandidateUserID: candidateUserID,
		Category:        t.Category,
		CreatedAt:       t.CreatedAt,
	}
}

// EvidenceSchemas lists the externally owned tables, for test databases.
func EvidenceSchemas() []any {
	return []any{
		&User{},
		&CandidateProfile{},
		&RecruiterProfile{},
		&Job{},
		&Application{},
		&CreditTransaction{},
	}
}
