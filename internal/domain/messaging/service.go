package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirelink/messaging-api/internal/domain/query"
	"github.com/hirelink/messaging-api/internal/utils/functional"
	"github.com/hirelink/messaging-api/internal/utils/platformerrors"
)

// Clock returns the current time.
type Clock func() time.Time

// Service is the entry point used by transport layers.
type Service struct {
	conversations ConversationRepository
	identities    IdentityDirectory
	evidence      EvidenceSource
	policy        *AccessPolicy
	resolver      *ContextResolver
	messages      *MessageService
	projector     *ConversationListProjector
	locker        PairLocker
	log           zerolog.Logger
	now           Clock
}

func NewService(
	conversations ConversationRepository,
	identities IdentityDirectory,
	evidence EvidenceSource,
	policy *AccessPolicy,
	resolver *ContextResolver,
	messages *MessageService,
	projector *ConversationListProjector,
	locker PairLocker,
	log zerolog.Logger,
	now Clock,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		conversations: conversations,
		identities:    identities,
		evidence:      evidence,
		policy:        policy,
		resolver:      resolver,
		messages:      messages,
		projector:     projector,
		locker:        locker,
		log:           log.With().Str("component", "messaging-service").Logger(),
		now:           now,
	}
}

type MessagePage struct {
	Items []*Message     `json:"items"`
	Meta  query.PageMeta `json:"meta"`
}

// ContextInput is a manual context override. A nil Type clears the context.
type ContextInput struct {
	Type           *ContextType
	ContextID      string
	ApplicationIDs []string
	Title          string
}

func requireID(ctx context.Context, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, name+" is required", nil, "0e6f2a4c-8b1d-4f3e-a5c7-9d2b4f6e8a1c")
	}
	return nil
}

// ===============================================
// Access
// ===============================================

func (s *Service) CheckMessagingAccess(ctx context.Context, recruiterID, candidateID string) (AccessDecision, error) {
	if err := requireID(ctx, "recruiterId", recruiterID); err != nil {
		return AccessDecision{}, err
	}
	if err := requireID(ctx, "candidateId", candidateID); err != nil {
		return AccessDecision{}, err
	}
	return s.policy.Evaluate(ctx, recruiterID, candidateID)
}

// ===============================================
// Conversations
// ===============================================

// CreateOrGetConversation returns the conversation between caller and other,
// creating it on first contact. Recruiters need access to the candidate.
func (s *Service) CreateOrGetConversation(ctx context.Context, callerID, otherUserID, jobID string) (*Conversation, error) {
	if err := requireID(ctx, "callerId", callerID); err != nil {
		return nil, err
	}
	if err := requireID(ctx, "userId", otherUserID); err != nil {
		return nil, err
	}
	if callerID == otherUserID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidOperation, "cannot start a conversation with yourself", nil, "6d3a9f1e-2b7c-4e5a-8f1d-3c9e7a5b1d2f")
	}

	caller, err := s.identities.User(ctx, callerID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "caller not found")
	}
	other, err := s.identities.User(ctx, otherUserID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "user not found")
	}

	recruiterID, candidateID, linked := recruiterCandidatePair(caller, other)

	if caller.Role == RoleRecruiter && other.Role == RoleCandidate {
		decision, err := s.policy.Evaluate(ctx, callerID, otherUserID)
		if err != nil {
			return nil, err
		}
		if !decision.CanMessage {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "recruiter has no access to message this candidate", nil, "9b4e2c7a-1f5d-4a3b-8e6c-2d7f9a1b3c5e", map[string]any{
				platformerrors.ReasonKey: string(decision.Reason),
			})
		}
	}

	if jobID != "" {
		if !linked {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "jobId only applies to recruiter and candidate conversations", nil, "4a8c2e6f-3b1d-4d9a-b7e5-1f3c5a7e9b2d")
		}
		if err := s.checkJobOwnership(ctx, recruiterID, jobID); err != nil {
			return nil, err
		}
	}

	var resolved *Context
	if linked {
		resolved = s.resolveContext(ctx, recruiterID, candidateID, jobID)
	}

	var conv *Conversation
	err = s.locker.WithPairLock(ctx, callerID, otherUserID, func(lockCtx context.Context) error {
		var findErr error
		conv, findErr = s.findOrCreate(lockCtx, callerID, otherUserID, resolved)
		return findErr
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to open conversation")
	}
	return conv, nil
}

func (s *Service) findOrCreate(ctx context.Context, userA, userB string, resolved *Context) (*Conversation, error) {
	existing, err := s.conversations.FindPair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.upgradeContext(ctx, existing, resolved)
	}

	created, err := s.conversations.CreatePair(ctx, userA, userB, resolved)
	if err == nil {
		return created, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		return nil, err
	}

	// Lost the creation race; the other writer's row is authoritative.
	s.log.Debug().Str("user_a", userA).Str("user_b", userB).Msg("conversation created concurrently, re-reading pair")
	existing, findErr := s.conversations.FindPair(ctx, userA, userB)
	if findErr != nil {
		return nil, findErr
	}
	if existing == nil {
		return nil, err
	}
	return s.upgradeContext(ctx, existing, resolved)
}

func (s *Service) upgradeContext(ctx context.Context, conv *Conversation, resolved *Context) (*Conversation, error) {
	if !ShouldReplace(conv.Context, resolved) {
		return conv, nil
	}
	if err := s.conversations.SetContext(ctx, conv.ID, resolved); err != nil {
		return nil, err
	}
	conv.Context = resolved.Clone()
	return conv, nil
}

// resolveContext degrades to no context when the evidence ledgers fail.
func (s *Service) resolveContext(ctx context.Context, recruiterID, candidateID, jobID string) *Context {
	var (
		resolved *Context
		err      error
	)
	if jobID != "" {
		resolved, err = s.resolver.ResolveForJob(ctx, recruiterID, candidateID, jobID)
	} else {
		resolved, err = s.resolver.Resolve(ctx, recruiterID, candidateID)
	}
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("recruiter_id", recruiterID).
			Str("candidate_id", candidateID).
			Msg("context resolution failed, continuing without context")
		return nil
	}
	return resolved
}

func (s *Service) checkJobOwnership(ctx context.Context, recruiterID, jobID string) error {
	notOwned := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "job does not belong to the recruiter", nil, "7e1b3d5f-9a2c-4b8e-a6d4-3f5b7d9e1a2c")

	profile, err := s.evidence.RecruiterProfile(ctx, recruiterID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return notOwned
		}
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load recruiter profile")
	}
	jobs, err := s.evidence.RecruiterJobs(ctx, profile.ID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list recruiter jobs")
	}
	if !functional.Any(jobs, func(j Job) bool { return j.ID == jobID }) {
		return notOwned
	}
	return nil
}

// recruiterCandidatePair orders a recruiter/candidate pair regardless of who initiates.
func recruiterCandidatePair(a, b *User) (string, string, bool) {
	switch {
	case a.Role == RoleRecruiter && b.Role == RoleCandidate:
		return a.ID, b.ID, true
	case a.Role == RoleCandidate && b.Role == RoleRecruiter:
		return b.ID, a.ID, true
	default:
		return "", "", false
	}
}

func (s *Service) participantConversation(ctx context.Context, conversationID, callerID string) (*Conversation, error) {
	if err := requireID(ctx, "conversationId", conversationID); err != nil {
		return nil, err
	}
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if !conv.HasParticipant(callerID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "caller is not a participant of this conversation", nil, "2c8e4a6b-5d1f-4e7a-9c3b-6a8d2f4e1b7c")
	}
	return conv, nil
}

func (s *Service) GetConversationByID(ctx context.Context, conversationID, callerID string) (*ConversationDetail, error) {
	conv, err := s.participantConversation(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}
	return s.projector.Detail(ctx, callerID, conv)
}

func (s *Service) GetLatestConversations(ctx context.Context, callerID string, params ListParams) (*ConversationPage, error) {
	if err := requireID(ctx, "callerId", callerID); err != nil {
		return nil, err
	}
	params.Pagination = query.NewPagination(params.Pagination.Page, params.Pagination.Limit)
	return s.projector.List(ctx, callerID, params)
}

// UpdateConversationContext replaces the context without any priority check.
func (s *Service) UpdateConversationContext(ctx context.Context, conversationID, callerID string, input ContextInput) (*Conversation, error) {
	conv, err := s.participantConversation(ctx, conversationID, callerID)
	if err != nil {
		return nil, err
	}

	next, err := s.buildContext(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.SetContext(ctx, conv.ID, next); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update conversation context")
	}
	conv.Context = next
	return conv, nil
}

func (s *Service) buildContext(ctx context.Context, input ContextInput) (*Context, error) {
	if input.Type == nil {
		return nil, nil
	}

	invalid := func(msg, code string) error {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, msg, nil, code)
	}

	next := &Context{
		Type:       *input.Type,
		ContextID:  strings.TrimSpace(input.ContextID),
		Title:      strings.TrimSpace(input.Title),
		AttachedAt: s.now().UTC(),
	}

	switch next.Type {
	case ContextTypeApplication:
		ids := functional.Unique(functional.Filter(input.ApplicationIDs, func(id string) bool { return id != "" }))
		if len(ids) == 0 {
			return nil, invalid("applicationIds are required for an APPLICATION context", "1d5f7b9e-3a2c-4e6b-8d1f-5b7e9a3c2d4f")
		}
		next.ApplicationIDs = ids
		if next.ContextID == "" {
			next.ContextID = ids[0]
		}
		if next.Title == "" {
			applications, err := s.evidence.ApplicationsByIDs(ctx, ids)
			if err != nil {
				return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load applications")
			}
			if len(applications) == 0 {
				return nil, invalid("referenced applications do not exist", "8f2b4d6a-7c1e-4a9b-b3d5-7e9f1b3a5c6d")
			}
			next.Title = ApplicationContext(applications, next.AttachedAt).Title
		}
	case ContextTypeProfileUnlock:
		if next.ContextID == "" {
			return nil, invalid("contextId is required for a PROFILE_UNLOCK context", "3b7d9f1a-6e2c-4d8b-a4f6-9c1e3b5d7f8a")
		}
		if next.Title == "" {
			next.Title = ProfileUnlockTitle
		}
	default:
		return nil, invalid("unknown context type", "5e9a1c3d-8f4b-4a2e-b6c8-1d3f5a7c9e2b")
	}
	return next, nil
}

// ===============================================
// Messages
// ===============================================

func (s *Service) GetConversationMessages(ctx context.Context, callerID, conversationID string, pagination query.Pagination) (*MessagePage, error) {
	pagination = query.NewPagination(pagination.Page, pagination.Limit)
	items, total, err := s.messages.ListMessages(ctx, callerID, conversationID, pagination)
	if err != nil {
		return nil, err
	}
	return &MessagePage{Items: items, Meta: query.NewPageMeta(pagination, total)}, nil
}

func (s *Service) SendMessage(ctx context.Context, callerID, conversationID, content string) (*Message, error) {
	if err := requireID(ctx, "conversationId", conversationID); err != nil {
		return nil, err
	}
	return s.messages.Send(ctx, callerID, conversationID, content)
}

func (s *Service) MarkMessagesAsRead(ctx context.Context, callerID string, messageIDs []string) (int64, error) {
	return s.messages.MarkRead(ctx, callerID, messageIDs)
}

func (s *Service) MarkConversationAsRead(ctx context.Context, callerID, conversationID string) (int64, error) {
	return s.messages.MarkConversationRead(ctx, callerID, conversationID)
}

func (s *Service) MarkConversationAsDelivered(ctx context.Context, callerID, conversationID string) (int64, error) {
	return s.messages.MarkConversationDelivered(ctx, callerID, conversationID)
}
