package conversationrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/dbschema"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/transaction"
	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

type ConversationGormRepository struct {
	db *transaction.Database
}

var _ messaging.ConversationRepository = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *transaction.Database) messaging.ConversationRepository {
	return &ConversationGormRepository{db}
}

// FindPair implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) FindPair(ctx context.Context, userA, userB string) (*messaging.Conversation, error) {
	p1, p2 := messaging.NormalizePair(userA, userB)

	var row dbschema.Conversation
	err := repo.db.GetTx(ctx).
		Where("participant1 = ? AND participant2 = ?", p1, p2).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find conversation by pair", err, "e2a4c6b8-1d3f-4a5e-9b7c-3d5f7a9c1e2b")
	}
	return row.EtoD(), nil
}

// FindByID implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) FindByID(ctx context.Context, id string) (*messaging.Conversation, error) {
	var row dbschema.Conversation
	err := repo.db.GetTx(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", err, "a7c9e1b3-5d2f-4b6a-8c4e-6f8a1c3e5b7d")
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find conversation by ID", err, "b8d1f3a5-7e4c-4c9b-a2d6-8b1c3e5f7a9d")
	}
	return row.EtoD(), nil
}

// CreatePair implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) CreatePair(ctx context.Context, userA, userB string, initial *messaging.Context) (*messaging.Conversation, error) {
	if userA == userB {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInvalidOperation, "a conversation needs two distinct participants", nil, "c9e2a4b6-8f5d-4d1c-b3e7-9c2d4f6a8b1e")
	}

	conv := messaging.NewConversation(userA, userB, initial, time.Now().UTC())
	model := dbschema.NewSchemaConversation(conv)
	if err := repo.db.GetTx(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, "conversation already exists for this pair", err, "d1f3b5c7-9a6e-4e2d-84f8-1d3e5a7b9c2f")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create conversation", err, "e3a5c7d9-1b8f-4f4e-95a1-2e4f6b8c1d3a")
	}
	return model.EtoD(), nil
}

// TouchLastMessage implements messaging.ConversationRepository as a compare-and-set on last_message_at.
func (repo *ConversationGormRepository) TouchLastMessage(ctx context.Context, conversationID, messageID string, sentAt time.Time) (bool, error) {
	result := repo.db.GetTx(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", conversationID).
		Where("last_message_id IS NULL OR last_message_at IS NULL OR last_message_at < ?", sentAt).
		Updates(map[string]any{
			"last_message_id": messageID,
			"last_message_at": sentAt,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update last message", result.Error, "f4b6d8e1-2c9a-4a5f-a6b2-3f5a7c9d2e4b")
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	if err := repo.ensureExists(ctx, conversationID); err != nil {
		return false, err
	}
	return false, nil
}

// SetContext implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) SetContext(ctx context.Context, conversationID string, c *messaging.Context) error {
	result := repo.db.GetTx(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", conversationID).
		Updates(dbschema.ContextColumns(c, time.Now().UTC()))
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update conversation context", result.Error, "a5c7e9f2-3d1b-4b6a-b7c3-4a6b8d1e3f5c")
	}
	if result.RowsAffected == 0 {
		return repo.ensureExists(ctx, conversationID)
	}
	return nil
}

// ListForUser implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) ListForUser(ctx context.Context, userID string, pagination query.Pagination) ([]*messaging.Conversation, error) {
	var rows []*dbschema.Conversation
	err := repo.inbox(ctx, userID).
		Order("last_message_at DESC, id ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err, "b6d8f1a3-4e2c-4c7b-88d4-5b7c9e2f4a6d")
	}
	return functional.Map(rows, func(row *dbschema.Conversation) *messaging.Conversation { return row.EtoD() }), nil
}

// CountForUser implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	if err := repo.inbox(ctx, userID).Count(&total).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to count conversations", err, "c7e9a2b4-5f3d-4d8c-99e5-6c8d1f3a5b7e")
	}
	return total, nil
}

// ListAllForUser implements messaging.ConversationRepository.
func (repo *ConversationGormRepository) ListAllForUser(ctx context.Context, userID string) ([]*messaging.Conversation, error) {
	var rows []*dbschema.Conversation
	if err := repo.inbox(ctx, userID).Order("last_message_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err, "d8f1b3c5-6a4e-4e9d-aaf6-7d9e2a4b6c8f")
	}
	return functional.Map(rows, func(row *dbschema.Conversation) *messaging.Conversation { return row.EtoD() }), nil
}

// inbox scopes to the user's conversations that already have a message.
func (repo *ConversationGormRepository) inbox(ctx context.Context, userID string) *gorm.DB {
	return repo.db.GetTx(ctx).
		Model(&dbschema.Conversation{}).
		Where("participant1 = ? OR participant2 = ?", userID, userID).
		Where("last_message_id IS NOT NULL")
}

func (repo *ConversationGormRepository) ensureExists(ctx context.Context, conversationID string) error {
	var count int64
	if err := repo.db.GetTx(ctx).Model(&dbschema.Conversation{}).Where("id = ?", conversationID).Count(&count).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find conversation", err, "e9a2c4d6-7b5f-4f1e-bb17-8e1f3b5c7d9a")
	}
	if count == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "f1b3d5e7-8c6a-4a2f-8c28-9f2a4c6d8e1b")
	}
	return nil
}
