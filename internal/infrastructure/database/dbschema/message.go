package dbschema

import (
	"time"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
)

// Message represents the database schema for chat messages
type Message struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"`
	ConversationID string    `gorm:"type:varchar(36);not null;index:idx_message_conversation_sent,priority:1;index:idx_message_unread,priority:1"`
	SenderID       string    `gorm:"type:varchar(64);not null"`
	RecipientID    string    `gorm:"type:varchar(64);not null;index:idx_message_unread,priority:2"`
	Content        string    `gorm:"type:text;not null"`
	SentAt         time.Time `gorm:"not null;index:idx_message_conversation_sent,priority:2"`
	IsRead         bool      `gorm:"not null;default:false;index:idx_message_unread,priority:3"`
	ReadAt         *time.Time
	DeliveredAt    *time.Time
	Status         string `gorm:"type:varchar(16);not null;default:'SENT'"`
}

func (Message) TableName() string {
	return "chat_messages"
}

// NewSchemaMessage creates a database schema from a domain message
func NewSchemaMessage(m *messaging.Message) *Message {
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		SentAt:         m.SentAt,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
		DeliveredAt:    m.DeliveredAt,
		Status:         string(m.Status),
	}
}

// EtoD converts the database entity to the domain message
func (m *Message) EtoD() *messaging.Message {
	return &messaging.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		SentAt:         m.SentAt,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
		DeliveredAt:    m.DeliveredAt,
		Status:         messaging.MessageStatus(m.Status),
	}
}
