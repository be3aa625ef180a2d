package dbschema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/hirelink/messaging-api/internal/domain/messaging"
	"github.com/hirelink/messaging-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
	database.RegisterSchemaForAutoMigrate(Message{})
}

// Conversation represents the database schema for 1:1 conversations.
// The composite unique index on the ordered pair backs first-contact creation.
type Conversation struct {
	ID                    string                      `gorm:"type:varchar(36);primaryKey"`
	Participant1          string                      `gorm:"type:varchar(64);not null;uniqueIndex:idx_conversation_pair,priority:1"`
	Participant2          string                      `gorm:"type:varchar(64);not null;uniqueIndex:idx_conversation_pair,priority:2;index:idx_conversation_participant2"`
	LastMessageID         *string                     `gorm:"type:varchar(36)"`
	LastMessageAt         *time.Time                  `gorm:"index:idx_conversation_last_message_at"`
	ContextType           *string                     `gorm:"type:varchar(32)"`
	ContextID             *string                     `gorm:"type:varchar(64)"`
	ContextApplicationIDs datatypes.JSONSlice[string] `gorm:"column:context_application_ids"`
	ContextTitle          *string                     `gorm:"type:varchar(512)"`
	ContextAttachedAt     *time.Time
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// NewSchemaConversation creates a database schema from a domain conversation
func NewSchemaConversation(c *messaging.Conversation) *Conversation {
	model := &Conversation{
		ID:            c.ID,
		Participant1:  c.Participant1,
		Participant2:  c.Participant2,
		LastMessageID: c.LastMessageID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	ApplyContext(model, c.Context)
	return model
}

// ApplyContext copies a domain context onto the context columns. A nil context clears them.
func ApplyContext(model *Conversation, ctx *messaging.Context) {
	if ctx == nil {
		model.ContextType = nil
		model.ContextID = nil
		model.ContextApplicationIDs = nil
		model.ContextTitle = nil
		model.ContextAttachedAt = nil
		return
	}
	contextType := string(ctx.Type)
	contextID := ctx.ContextID
	title := ctx.Title
	attachedAt := ctx.AttachedAt
	model.ContextType = &contextType
	model.ContextID = &contextID
	model.ContextApplicationIDs = datatypes.NewJSONSlice(ctx.ApplicationIDs)
	model.ContextTitle = &title
	model.ContextAttachedAt = &attachedAt
}

// ContextColumns returns the column map used by a full context replace.
func ContextColumns(ctx *messaging.Context, now time.Time) map[string]any {
	var model Conversation
	ApplyContext(&model, ctx)
	return map[string]any{
		"context_type":            model.ContextType,
		"context_id":              model.ContextID,
		"context_application_ids": model.ContextApplicationIDs,
		"context_title":           model.ContextTitle,
		"context_attached_at":     model.ContextAttachedAt,
		"updated_at":              now,
	}
}

// EtoD converts the database entity to the domain conversation
func (c *Conversation) EtoD() *messaging.Conversation {
	conv := &messaging.Conversation{
		ID:            c.ID,
		Participant1:  c.Participant1,
		Participant2:  c.Participant2,
		LastMessageID: c.LastMessageID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.ContextType != nil && *c.ContextType != "" {
		ctx := &messaging.Context{
			Type:           messaging.ContextType(*c.ContextType),
			ApplicationIDs: []string(c.ContextApplicationIDs),
		}
		if c.ContextID != nil {
			ctx.ContextID = *c.ContextID
		}
		if c.ContextTitle != nil {
			ctx.Title = *c.ContextTitle
		}
		if c.ContextAttachedAt != nil {
			ctx.AttachedAt = *c.ContextAttachedAt
		}
		conv.Context = ctx
	}
	return conv
}
