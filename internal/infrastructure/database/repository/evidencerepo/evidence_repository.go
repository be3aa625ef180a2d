package evidencerepo

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/dbschema"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/transaction"
	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// EvidenceGormRepository reads the user, profile, job, application and credit
// tables owned by other services.
type EvidenceGormRepository struct {
	db *transaction.Database
}

var (
	_ messaging.EvidenceSource    = (*EvidenceGormRepository)(nil)
	_ messaging.IdentityDirectory = (*EvidenceGormRepository)(nil)
)

func NewEvidenceGormRepository(db *transaction.Database) *EvidenceGormRepository {
	return &EvidenceGormRepository{db}
}

func (repo *EvidenceGormRepository) first(ctx context.Context, dest any, what string, query string, args ...any) error {
	err := repo.db.GetTx(ctx).Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, what+" not found", err, "9c2e4a6d-8f1b-4d3c-87e5-9d2f4b6c8e1a")
	}
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to load "+what, err, "1d3f5b7e-9a2c-4e4d-98f6-1e3a5c7d9f2b")
	}
	return nil
}

// RecruiterProfile implements messaging.EvidenceSource.
func (repo *EvidenceGormRepository) RecruiterProfile(ctx context.Context, userID string) (*messaging.RecruiterProfile, error) {
	var row dbschema.RecruiterProfile
	if err := repo.first(ctx, &row, "recruiter profile", "user_id = ?", userID); err != nil {
		return nil, err
	}
	return row.EtoD(), nil
}

// CandidateProfile implements messaging.EvidenceSource.
func (repo *EvidenceGormRepository) CandidateProfile(ctx context.Context, userID string) (*messaging.CandidateProfile, error) {
	var row dbschema.CandidateProfile
	if err := repo.first(ctx, &row, "candidate profile", "user_id = ?", userID); err != nil {
		return nil, err
	}
	return row.EtoD(), nil
}

// RecruiterJobs implements messaging.EvidenceSource.
func (repo *EvidenceGormRepository) RecruiterJobs(ctx context.Context, recruiterProfileID string) ([]messaging.Job, error) {
	var rows []*dbschema.Job
	if err := repo.db.GetTx(ctx).Where("recruiter_profile_id = ?", recruiterProfileID).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list recruiter jobs", err, "2e4a6c8f-1b3d-4f5e-a9a7-2f4b6d8e1a3c")
	}
	return functional.Map(rows, func(row *dbschema.Job) messaging.Job { return row.EtoD() }), nil
}

func (repo *EvidenceGormRepository) applicationsWithJob(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx).
		Table("applications").
		Select("applications.*, jobs.title AS job_title").
		Joins("JOIN jobs ON jobs.id = applications.job_id")
}

// ListApplications implements messaging.EvidenceSource.
func (repo *EvidenceGormRepository) ListApplications(ctx context.Context, candidateProfileID string, jobIDs []string) ([]messaging.Application, error) {
	if len(jobIDs) == 0 {
		return []messaging.Application{}, nil
	}
	var rows []*dbschema.ApplicationWithJob
	err := repo.applicationsWithJob(ctx).
		Where("applications.candidate_profile_id = ?", candidateProfileID).
		Where("applications.job_id IN ?", jobIDs).
		Order("applications.applied_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list applications", err, "3f5b7d9a-2c4e-4a6f-bab8-3a5c7e9f2b4d")
	}
	return functional.Map(rows, func(row *dbschema.ApplicationWithJob) messaging.Application { return row.EtoD() }), nil
}

// ApplicationsByIDs implements messaging.EvidenceSource.
func (repo *EvidenceGormRepository) ApplicationsByIDs(ctx context.Context, ids []string) ([]messaging.Application, error) {
	if len(ids) == 0 {
		return []messaging.Application{}, nil
	}
	var rows []*dbschema.ApplicationWithJob
	err := repo.applicationsWithJob(ctx).
		Where("applications.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to load applications", err, "4a6c8e1b-3d5f-4b7a-8bc9-4b6d8f1a3c5e")
	}
	return functional.Map(rows, func(row *dbschema.ApplicationWithJob) messaging.Application { return row.EtoD() }), nil
}

// FindUnlock implements messaging.EvidenceSource. The most recent unlock wins.
func (repo *EvidenceGormRepository) FindUnlock(ctx context.Context, recruiterUserID, candidateUserID string) (*messaging.UnlockTransaction, error) {
	var row dbschema.CreditTransaction
	err := repo.db.GetTx(ctx).
		Where("user_id = ? AND category = ?", recruiterUserID, messaging.UnlockCategoryProfileUnlock).
		Where(datatypes.JSONQuery("metadata").Equals(candidateUserID, "candidateId")).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to look up profile unlock", err, "5b7d9f2c-4e6a-4c8b-9cda-5c7e9a2b4d6f")
	}
	return row.EtoD(candidateUserID), nil
}

// User implements messaging.IdentityDirectory.
func (repo *EvidenceGormRepository) User(ctx context.Context, userID string) (*messaging.User, error) {
	var row dbschema.User
	if err := repo.first(ctx, &row, "user", "id = ?", userID); err != nil {
		return nil, err
	}
	return row.EtoD(), nil
}

// DisplayProfile implements messaging.IdentityDirectory.
func (repo *EvidenceGormRepository) DisplayProfile(ctx context.Context, userID string, role messaging.Role) (messaging.DisplayProfile, error) {
	switch role {
	case messaging.RoleCandidate:
		profile, err := repo.CandidateProfile(ctx, userID)
		if err != nil {
			return nilIfNotFound(err)
		}
		return messaging.CandidateDisplay{FullName: profile.FullName, Avatar: profile.Avatar}, nil
	case messaging.RoleRecruiter:
		profile, err := repo.RecruiterProfile(ctx, userID)
		if err != nil {
			return nilIfNotFound(err)
		}
		return messaging.RecruiterDisplay{
			FullName:    profile.FullName,
			Avatar:      profile.Avatar,
			CompanyName: profile.Company.Name,
			CompanyLogo: profile.Company.Logo,
		}, nil
	default:
		return nil, nil
	}
}

func nilIfNotFound(err error) (messaging.DisplayProfile, error) {
	if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, nil
	}
	return nil, err
}
