package messaging

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// ===============================================
// Read Model
// ===============================================

type ParticipantView struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role,omitempty"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type MessagePreview struct {
	ID       string        `json:"id"`
	SenderID string        `json:"sender_id"`
	Content  string        `json:"content"`
	SentAt   time.Time     `json:"sent_at"`
	IsRead   bool          `json:"is_read"`
	Status   MessageStatus `json:"status"`
}

type ApplicationView struct {
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	JobTitle  string            `json:"job_title"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
}

type ContextView struct {
	Type           ContextType        `json:"type"`
	ContextID      string             `json:"context_id"`
	ApplicationIDs []string           `json:"application_ids,omitempty"`
	Title          string             `json:"title"`
	AttachedAt     time.Time          `json:"attached_at"`
	Status         *ApplicationStatus `json:"status,omitempty"`
	Applications   []ApplicationView  `json:"applications,omitempty"`
}

// ConversationView is one inbox row as seen by a single user.
type ConversationView struct {
	ID               string          `json:"id"`
	OtherParticipant ParticipantView `json:"other_participant"`
	LastMessage      *MessagePreview `json:"last_message,omitempty"`
	LastMessageAt    *time.Time      `json:"last_message_at,omitempty"`
	UnreadCount      int64           `json:"unread_count"`
	Context          *ContextView    `json:"context,omitempty"`
}

type ConversationDetail struct {
	ConversationView
	Participant1 string    `json:"participant1"`
	Participant2 string    `json:"participant2"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListParams struct {
	Search     string
	Pagination query.Pagination
}

type ConversationPage struct {
	Items []ConversationView `json:"items"`
	Meta  query.PageMeta     `json:"meta"`
}

// ===============================================
// Projector
// ===============================================

// ConversationListProjector assembles the inbox read model from the stores,
// the identity directory and the application ledger.
type ConversationListProjector struct {
	conversations ConversationRepository
	messages      MessageRepository
	identities    IdentityDirectory
	evidence      EvidenceSource
	log           zerolog.Logger
}

func NewConversationListProjector(conversations ConversationRepository, messages MessageRepository, identities IdentityDirectory, evidence EvidenceSource, log zerolog.Logger) *ConversationListProjector {
	return &ConversationListProjector{
		conversations: conversations,
		messages:      messages,
		identities:    identities,
		evidence:      evidence,
		log:           log.With().Str("component", "conversation-list").Logger(),
	}
}

// List returns the user's conversations that have at least one message, newest first.
func (p *ConversationListProjector) List(ctx context.Context, userID string, params ListParams) (*ConversationPage, error) {
	search := strings.TrimSpace(params.Search)
	if search == "" {
		return p.listPage(ctx, userID, params.Pagination)
	}
	return p.searchPage(ctx, userID, search, params.Pagination)
}

func (p *ConversationListProjector) listPage(ctx context.Context, userID string, pagination query.Pagination) (*ConversationPage, error) {
	convs, err := p.conversations.ListForUser(ctx, userID, pagination)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	total, err := p.conversations.CountForUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count conversations")
	}

	views, err := p.project(ctx, userID, convs)
	if err != nil {
		return nil, err
	}
	return &ConversationPage{Items: views, Meta: query.NewPageMeta(pagination, total)}, nil
}

func (p *ConversationListProjector) searchPage(ctx context.Context, userID, search string, pagination query.Pagination) (*ConversationPage, error) {
	convs, err := p.conversations.ListAllForUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	sortByLastMessage(convs)

	views, err := p.project(ctx, userID, convs)
	if err != nil {
		return nil, err
	}
	matched := functional.Filter(views, func(v ConversationView) bool { return matchesSearch(v, search) })

	start, end := pagination.Window(len(matched))
	return &ConversationPage{
		Items: matched[start:end],
		Meta:  query.NewPageMeta(pagination, int64(len(matched))),
	}, nil
}

// Detail projects a single conversation for one of its participants.
func (p *ConversationListProjector) Detail(ctx context.Context, userID string, conv *Conversation) (*ConversationDetail, error) {
	views, err := p.project(ctx, userID, []*Conversation{conv})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		// callers check membership first
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "conversation projection is empty for participant", nil, "b7e3c1a9-4d2f-4b6e-8a1c-5f9d3e7b2a4c")
	}
	return &ConversationDetail{
		ConversationView: views[0],
		Participant1:     conv.Participant1,
		Participant2:     conv.Participant2,
		CreatedAt:        conv.CreatedAt,
		UpdatedAt:        conv.UpdatedAt,
	}, nil
}

// project runs the read-model steps over a batch of conversations.
// Conversations userID does not belong to are dropped.
func (p *ConversationListProjector) project(ctx context.Context, userID string, convs []*Conversation) ([]ConversationView, error) {
	convs = functional.Filter(convs, func(c *Conversation) bool { return c.HasParticipant(userID) })
	if len(convs) == 0 {
		return []ConversationView{}, nil
	}

	others := make([]string, 0, len(convs))
	for _, c := range convs {
		other, _ := resolveParticipant(c, userID)
		others = append(others, other)
	}

	participants, err := p.resolveDisplay(ctx, functional.Unique(others))
	if err != nil {
		return nil, err
	}

	convIDs := functional.Map(convs, func(c *Conversation) string { return c.ID })
	unread, err := p.countUnread(ctx, convIDs, userID)
	if err != nil {
		return nil, err
	}

	previews, err := p.lastMessages(ctx, convs)
	if err != nil {
		return nil, err
	}

	contexts, err := p.joinContext(ctx, convs)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(convs))
	for i, c := range convs {
		view := ConversationView{
			ID:               c.ID,
			OtherParticipant: participants[others[i]],
			LastMessageAt:    c.LastMessageAt,
			UnreadCount:      unread[c.ID],
			Context:          contexts[c.ID],
		}
		if c.LastMessageID != nil {
			view.LastMessage = previews[*c.LastMessageID]
		}
		views = append(views, view)
	}
	return views, nil
}

// resolveParticipant returns the participant that is not userID.
func resolveParticipant(conv *Conversation, userID string) (string, bool) {
	return conv.OtherParticipant(userID)
}

// resolveDisplay looks up the role and display profile of each user. Unknown
// users render as their raw id.
func (p *ConversationListProjector) resolveDisplay(ctx context.Context, userIDs []string) (map[string]ParticipantView, error) {
	result := make(map[string]ParticipantView, len(userIDs))
	for _, id := range userIDs {
		view := ParticipantView{UserID: id, Name: id}

		user, err := p.identities.User(ctx, id)
		if err != nil {
			if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
				return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to resolve participant")
			}
			p.log.Debug().Str("user_id", id).Msg("participant not found in identity directory")
			result[id] = view
			continue
		}
		view.Role = user.Role

		profile, err := p.identities.DisplayProfile(ctx, id, user.Role)
		if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to resolve participant profile")
		}

		display := ResolveDisplay(id, profile)
		view.Name = display.Name
		view.Avatar = display.Avatar
		result[id] = view
	}
	return result, nil
}

func (p *ConversationListProjector) countUnread(ctx context.Context, conversationIDs []string, userID string) (map[string]int64, error) {
	counts, err := p.messages.CountUnread(ctx, conversationIDs, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count unread messages")
	}
	return counts, nil
}

func (p *ConversationListProjector) lastMessages(ctx context.Context, convs []*Conversation) (map[string]*MessagePreview, error) {
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		if c.LastMessageID != nil {
			ids = append(ids, *c.LastMessageID)
		}
	}
	if len(ids) == 0 {
		return map[string]*MessagePreview{}, nil
	}

	msgs, err := p.messages.FindByIDs(ctx, ids)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load last messages")
	}
	previews := make(map[string]*MessagePreview, len(msgs))
	for _, m := range msgs {
		previews[m.ID] = &MessagePreview{
			ID:       m.ID,
			SenderID: m.SenderID,
			Content:  m.Content,
			SentAt:   m.SentAt,
			IsRead:   m.IsRead,
			Status:   m.Status,
		}
	}
	return previews, nil
}

// contextApplicationIDs returns the applications an APPLICATION context points at.
// Legacy rows only carry ContextID.
func contextApplicationIDs(c *Context) []string {
	if c == nil || c.Type != ContextTypeApplication {
		return nil
	}
	if len(c.ApplicationIDs) > 0 {
		return c.ApplicationIDs
	}
	if c.ContextID != "" {
		return []string{c.ContextID}
	}
	return nil
}

// joinContext expands APPLICATION contexts with the referenced applications,
// using one ledger lookup for the whole batch.
func (p *ConversationListProjector) joinContext(ctx context.Context, convs []*Conversation) (map[string]*ContextView, error) {
	var wanted []string
	for _, c := range convs {
		wanted = append(wanted, contextApplicationIDs(c.Context)...)
	}

	byID := map[string]Application{}
	if wanted = functional.Unique(wanted); len(wanted) > 0 {
		applications, err := p.evidence.ApplicationsByIDs(ctx, wanted)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load context applications")
		}
		for _, a := range applications {
			byID[a.ID] = a
		}
	}

	views := make(map[string]*ContextView, len(convs))
	for _, c := range convs {
		if c.Context == nil {
			continue
		}
		views[c.ID] = buildContextView(c.Context, byID)
	}
	return views, nil
}

func buildContextView(c *Context, applications map[string]Application) *ContextView {
	view := &ContextView{
		Type:           c.Type,
		ContextID:      c.ContextID,
		ApplicationIDs: c.ApplicationIDs,
		Title:          c.Title,
		AttachedAt:     c.AttachedAt,
	}

	var found []Application
	for _, id := range contextApplicationIDs(c) {
		if a, ok := applications[id]; ok {
			found = append(found, a)
		}
	}
	if len(found) == 0 {
		return view
	}

	found = SortApplicationsByRecency(found)
	view.Applications = functional.Map(found, func(a Application) ApplicationView {
		return ApplicationView{
			ID:        a.ID,
			JobID:     a.JobID,
			JobTitle:  a.JobTitle,
			Status:    a.Status,
			AppliedAt: a.AppliedAt,
		}
	})
	status := found[0].Status
	view.Status = &status
	return view
}

func matchesSearch(view ConversationView, search string) bool {
	return strings.Contains(strings.ToLower(view.OtherParticipant.Name), strings.ToLower(search))
}

func sortByLastMessage(convs []*Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i].LastMessageAt, convs[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
