package messagerepo

import (
	"context"
	"time"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/dbschema"
	"github.com/hirelink/messaging-api/internal/infrastructure/database/transaction"
	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

type MessageGormRepository struct {
	db *transaction.Database
}

var _ messaging.MessageRepository = (*MessageGormRepository)(nil)

func NewMessageGormRepository(db *transaction.Database) messaging.MessageRepository {
	return &MessageGormRepository{db}
}

// Append implements messaging.MessageRepository.
func (repo *MessageGormRepository) Append(ctx context.Context, m *messaging.Message) (*messaging.Message, error) {
	model := dbschema.NewSchemaMessage(m)
	if err := repo.db.GetTx(ctx).Create(model).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create message", err, "1a3c5e7b-9d2f-4b4a-8e6c-1b3d5f7a9c2e")
	}
	return model.EtoD(), nil
}

// ListByConversation implements messaging.MessageRepository.
func (repo *MessageGormRepository) ListByConversation(ctx context.Context, conversationID string, pagination query.Pagination) ([]*messaging.Message, int64, error) {
	var total int64
	err := repo.db.GetTx(ctx).
		Model(&dbschema.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&total).Error
	if err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to count messages", err, "2b4d6f8c-1e3a-4c5b-9f7d-2c4e6a8b1d3f")
	}

	var rows []*dbschema.Message
	err = repo.db.GetTx(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at DESC").
		Order("id DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list messages", err, "3c5e7a9d-2f4b-4d6c-a18e-3d5f7b9c2e4a")
	}

	return functional.Map(rows, func(row *dbschema.Message) *messaging.Message { return row.EtoD() }), total, nil
}

func readColumns(at time.Time) map[string]any {
	return map[string]any{
		"is_read": true,
		"read_at": at,
		"status":  string(messaging.MessageStatusRead),
	}
}

// MarkRead implements messaging.MessageRepository. Only unread messages addressed
// to asRecipient change; other ids are skipped.
func (repo *MessageGormRepository) MarkRead(ctx context.Context, ids []string, asRecipient string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := repo.db.GetTx(ctx).
		Model(&dbschema.Message{}).
		Where("id IN ?", ids).
		Where("recipient_id = ? AND is_read = ?", asRecipient, false).
		Updates(readColumns(at))
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to mark messages as read", result.Error, "4d6f8b1e-3a5c-4e7d-b29f-4e6a8c1d3f5b")
	}
	return result.RowsAffected, nil
}

// MarkConversationRead implements messaging.MessageRepository.
func (repo *MessageGormRepository) MarkConversationRead(ctx context.Context, conversationID, asRecipient string, at time.Time) (int64, error) {
	result := repo.db.GetTx(ctx).
		Model(&dbschema.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("recipient_id = ? AND is_read = ?", asRecipient, false).
		Updates(readColumns(at))
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to mark conversation as read", result.Error, "5e7a9c2f-4b6d-4f8e-83a1-5f7b9d2e4a6c")
	}
	return result.RowsAffected, nil
}

// MarkConversationDelivered implements messaging.MessageRepository. Only SENT messages move.
func (repo *MessageGormRepository) MarkConversationDelivered(ctx context.Context, conversationID, asRecipient string, at time.Time) (int64, error) {
	result := repo.db.GetTx(ctx).
		Model(&dbschema.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("recipient_id = ? AND status = ?", asRecipient, string(messaging.MessageStatusSent)).
		Updates(map[string]any{
			"delivered_at": at,
			"status":       string(messaging.MessageStatusDelivered),
		})
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to mark conversation as delivered", result.Error, "6f8b1d3a-5c7e-4a9f-94b2-6a8c1e3f5b7d")
	}
	return result.RowsAffected, nil
}

type unreadRow struct {
	ConversationID string
	Unread         int64
}

// CountUnread implements messaging.MessageRepository.
func (repo *MessageGormRepository) CountUnread(ctx context.Context, conversationIDs []string, userID string) (map[string]int64, error) {
	counts := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	var rows []unreadRow
	err := repo.db.GetTx(ctx).
		Model(&dbschema.Message{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("conversation_id IN ?", conversationIDs).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to count unread messages", err, "7a9c2e4b-6d8f-4b1a-a5c3-7b9d2f4a6c8e")
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Unread
	}
	return counts, nil
}

// FindByIDs implements messaging.MessageRepository.
func (repo *MessageGormRepository) FindByIDs(ctx context.Context, ids []string) ([]*messaging.Message, error) {
	if len(ids) == 0 {
		return []*messaging.Message{}, nil
	}
	var rows []*dbschema.Message
	if err := repo.db.GetTx(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to load messages", err, "8b1d3f5c-7e9a-4c2b-b6d4-8c1e3a5b7d9f")
	}
	return functional.Map(rows, func(row *dbschema.Message) *messaging.Message { return row.EtoD() }), nil
}
