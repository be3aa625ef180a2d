package observability

import (
	"crypto/sha256"
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"
)

const (
	AttrConversationID = "messaging.conversation_id"
	AttrUserID         = "messaging.user_id"
	AttrOtherUserID    = "messaging.other_user_id"
	AttrJobID          = "messaging.job_id"
	AttrContextType    = "messaging.context_type"
)

// PIILevel controls how user ids appear on spans.
type PIILevel string

const (
	PIILevelNone   PIILevel = "none"
	PIILevelHashed PIILevel = "hashed"
	PIILevelFull   PIILevel = "full"
)

// Sanitizer redacts or hashes user ids before they reach the trace backend.
// Message content is never attached to spans.
type Sanitizer struct {
	level PIILevel
	salt  string
}

func NewSanitizer(level string, salt string) *Sanitizer {
	return &Sanitizer{level: PIILevel(level), salt: salt}
}

func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:12]
}

// UserID renders a user id according to the configured level. Unknown levels hash.
func (s *Sanitizer) UserID(userID string) string {
	if userID == "" {
		return ""
	}
	if s == nil {
		return "[REDACTED]"
	}
	switch s.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return userID
	default:
		return s.hash(userID)
	}
}

// ConversationAttrs returns the correlation attributes for a conversation call.
func (s *Sanitizer) ConversationAttrs(conversationID, userID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if conversationID != "" {
		attrs = append(attrs, attribute.String(AttrConversationID, conversationID))
	}
	if userID != "" {
		attrs = append(attrs, attribute.String(AttrUserID, s.UserID(userID)))
	}
	return attrs
}

// PairAttrs returns attributes for calls made on behalf of a user towards another user.
func (s *Sanitizer) PairAttrs(userID, otherUserID, jobID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrUserID, s.UserID(userID)),
		attribute.String(AttrOtherUserID, s.UserID(otherUserID)),
	}
	if jobID != "" {
		attrs = append(attrs, attribute.String(AttrJobID, jobID))
	}
	return attrs
}
