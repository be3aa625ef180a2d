package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSanitizerUserID(t *testing.T) {
	hashed := NewSanitizer("hashed", "salt")
	assert.Len(t, hashed.UserID("user-1"), 12)
	assert.Equal(t, hashed.UserID("user-1"), hashed.UserID("user-1"))
	assert.NotEqual(t, hashed.UserID("user-1"), NewSanitizer("hashed", "other").UserID("user-1"))

	assert.Equal(t, "[REDACTED]", NewSanitizer("none", "").UserID("user-1"))
	assert.Equal(t, "user-1", NewSanitizer("full", "").UserID("user-1"))
	assert.Len(t, NewSanitizer("bogus", "").UserID("user-1"), 12)
	assert.Empty(t, hashed.UserID(""))

	var unset *Sanitizer
	assert.Equal(t, "[REDACTED]", unset.UserID("user-1"))
}

func TestConversationAttrs(t *testing.T) {
	s := NewSanitizer("full", "")

	attrs := s.ConversationAttrs("conv-1", "user-1")
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(AttrConversationID, "conv-1"),
		attribute.String(AttrUserID, "user-1"),
	}, attrs)

	assert.Empty(t, s.ConversationAttrs("", ""))
	assert.Len(t, s.PairAttrs("a", "b", "job-1"), 3)
}
