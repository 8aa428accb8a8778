package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/scopedev/scopepad/internal/apperr"
	"github.com/scopedev/scopepad/internal/collection"
	"github.com/scopedev/scopepad/internal/store"
)

// TargetService implements the messaging fan-out: every conversation is two
// independent target rows, one per participant, and every send writes a
// sent/received message pair across them.
type TargetService struct {
	dbStore *store.SQLiteStore
}

func NewTargetService(db *store.SQLiteStore) *TargetService {
	return &TargetService{dbStore: db}
}

// TargetDetail is a target together with its messages in id order.
type TargetDetail struct {
	Target   store.Target
	Messages []store.Message
}

// CreateTarget opens a conversation toward recipientName. Creating the same
// target twice is idempotent: the existing row is returned unchanged. The
// recipient must be a known user.
func (s *TargetService) CreateTarget(ctx context.Context, owner *store.User, recipientName string) (*TargetDetail, error) {
	name := strings.ToLower(recipientName)

	recipient, err := s.dbStore.GetUserByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}
	if recipient == nil {
		return nil, apperr.ErrUnknownUser
	}

	existing, err := s.dbStore.GetTargetByUserAndName(ctx, owner.ID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.detail(ctx, *existing)
	}

	target, err := s.dbStore.CreateTarget(ctx, owner.ID, name)
	if err != nil {
		return nil, err
	}
	return &TargetDetail{Target: *target, Messages: nil}, nil
}

// ListTargets returns the owner's targets in id order, each with its
// messages in id order.
func (s *TargetService) ListTargets(ctx context.Context, userID int64) ([]TargetDetail, error) {
	targets, err := s.dbStore.GetTargetsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]TargetDetail, 0, len(targets))
	for _, t := range targets {
		d, err := s.detail(ctx, t)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// GetTarget finds one of the owner's targets by id via the ordered lookup.
func (s *TargetService) GetTarget(ctx context.Context, userID, targetID int64) (*TargetDetail, error) {
	targets, err := s.dbStore.GetTargetsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, target, ok := collection.Search(targets, targetID)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return s.detail(ctx, target)
}

// SendMessage delivers text through one of the sender's targets. It writes
// two rows atomically: sent=true under the sender's target and sent=false
// under the recipient's mirror target named after the sender, creating that
// mirror when the recipient has never messaged back. Returns the sender's
// updated view of the conversation.
func (s *TargetService) SendMessage(ctx context.Context, sender *store.User, targetID int64, recipientName, text, title string, code bool) (*TargetDetail, error) {
	targets, err := s.dbStore.GetTargetsByUserID(ctx, sender.ID)
	if err != nil {
		return nil, err
	}
	_, target, ok := collection.Search(targets, targetID)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	name := strings.ToLower(recipientName)
	recipient, err := s.dbStore.GetUserByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}
	if recipient == nil {
		return nil, apperr.ErrUnknownUser
	}

	if err := s.dbStore.SendMirroredMessage(ctx, target.ID, recipient.ID, sender.Username, text, title, code); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return s.detail(ctx, target)
}

// DeleteTarget removes a target and all of its messages, then reports the
// successor target the client should show next (previous-else-next, nil when
// none remain). The counterpart target on the recipient's side keeps its
// copy of the conversation.
func (s *TargetService) DeleteTarget(ctx context.Context, userID, targetID int64) (*TargetDetail, error) {
	targets, err := s.dbStore.GetTargetsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pos, _, ok := collection.Search(targets, targetID)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	var next *TargetDetail
	if succ, ok := collection.Successor(len(targets), pos); ok {
		next, err = s.detail(ctx, targets[succ])
		if err != nil {
			return nil, err
		}
	}

	if err := s.dbStore.DeleteTargetCascade(ctx, targetID); err != nil {
		return nil, fmt.Errorf("failed to delete target: %w", err)
	}
	return next, nil
}

func (s *TargetService) detail(ctx context.Context, target store.Target) (*TargetDetail, error) {
	messages, err := s.dbStore.GetMessagesByTargetID(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load target messages: %w", err)
	}
	return &TargetDetail{Target: target, Messages: messages}, nil
}
