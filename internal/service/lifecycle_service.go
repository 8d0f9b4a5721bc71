package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/logger"
	"github.com/amalthea/finance-api/internal/mapper"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransitionCommand asks to move one document to a new status
type TransitionCommand struct {
	Kind       domain.DocumentKind
	DocumentID uuid.UUID
	To         string
	Actor      *domain.Actor
	Reason     string
}

// LifecycleService moves documents through the status machine of their kind.
//
// A transition re-reads the current status inside a transaction, validates
// the edge and the actor's guard, and commits with a conditional update on
// the status it read. Of two concurrent requests for the same edge exactly
// one succeeds; the other gets ErrInvalidTransition.
type LifecycleService struct {
	repo   *repository.DocumentRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(repo *repository.DocumentRepository, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

func invalidTransition(kind domain.DocumentKind, from, to string, cause error) error {
	return &domain.TransitionError{Kind: kind, From: from, To: to, Err: cause}
}

// Transition applies cmd and returns the document's new state
func (s *LifecycleService) Transition(ctx context.Context, cmd TransitionCommand) (*domain.DocumentState, error) {
	lc, err := domain.LifecycleFor(cmd.Kind)
	if err != nil {
		return nil, err
	}
	if cmd.Actor == nil {
		return nil, domain.ErrUnauthorized
	}
	reason := strings.TrimSpace(cmd.Reason)

	var state *domain.DocumentState
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.loadState(ctx, tx, cmd.Kind, cmd.DocumentID, cmd.Actor)
		if err != nil {
			return err
		}
		from := current.Status

		if !lc.IsValid(cmd.To) {
			return invalidTransition(cmd.Kind, from, cmd.To, fmt.Errorf("%w: %w", domain.ErrInvalidTransition, domain.ErrUnknownStatus))
		}
		guard, ok := lc.Edge(from, cmd.To)
		if !ok {
			return invalidTransition(cmd.Kind, from, cmd.To, domain.ErrInvalidTransition)
		}
		if !cmd.Actor.Satisfies(guard, current.OwnerID) {
			return fmt.Errorf("%w: %s guard on %s -> %s", domain.ErrUnauthorized, guard, from, cmd.To)
		}
		if domain.RequiresReason(cmd.To) && reason == "" {
			return domain.ErrMissingReason
		}

		now := s.now()
		updates := transitionUpdates(cmd.Kind, cmd.To, cmd.Actor, reason, now)
		swapped, err := s.repo.CompareAndSetStatus(ctx, tx, cmd.Kind, cmd.DocumentID, from, cmd.To, updates)
		if err != nil {
			return err
		}
		if !swapped {
			return invalidTransition(cmd.Kind, from, cmd.To, domain.ErrInvalidTransition)
		}

		if err := s.repo.CreateHistory(ctx, tx, &domain.DocumentStatusHistory{
			OrgID:         current.OrgID,
			DocumentKind:  cmd.Kind,
			DocumentID:    cmd.DocumentID,
			FromStatus:    from,
			ToStatus:      cmd.To,
			ChangedByID:   cmd.Actor.ID,
			ChangedByName: cmd.Actor.Name,
			Reason:        reason,
			ChangedAt:     now,
		}); err != nil {
			return err
		}

		current.Status = cmd.To
		current.UpdatedAt = now
		if r, ok := updates["rejection_reason"]; ok {
			current.RejectionReason, _ = r.(*string)
		}
		state = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.ForDocument(logger.ForActor(s.logger, cmd.Actor), cmd.Kind, cmd.DocumentID).
		Info("document status changed", zap.String("to", cmd.To))

	return state, nil
}

// transitionUpdates returns the columns that change together with the status
func transitionUpdates(kind domain.DocumentKind, to string, actor *domain.Actor, reason string, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{}
	approvable := kind == domain.KindExpense || kind == domain.KindTimesheet

	switch to {
	case domain.RejectedStatus:
		updates["rejection_reason"] = lo.ToPtr(reason)
		if approvable {
			updates["approved_by_id"] = nil
			updates["approved_at"] = nil
		}
	case string(domain.ExpenseStatusApproved):
		if approvable {
			updates["rejection_reason"] = (*string)(nil)
			updates["approved_by_id"] = actor.ID
			updates["approved_at"] = now
		}
	}
	return updates
}

// loadState reads a document for actor, hiding documents of other organizations
func (s *LifecycleService) loadState(ctx context.Context, tx *gorm.DB, kind domain.DocumentKind, id uuid.UUID, actor *domain.Actor) (*domain.DocumentState, error) {
	state, err := s.repo.GetState(ctx, tx, kind, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
		}
		return nil, err
	}
	if actor == nil || state.OrgID != actor.OrgID {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return state, nil
}

// GetState returns the lifecycle state of a document
func (s *LifecycleService) GetState(ctx context.Context, kind domain.DocumentKind, id uuid.UUID, actor *domain.Actor) (*domain.DocumentState, error) {
	return s.loadState(ctx, nil, kind, id, actor)
}

// BulkTransition applies the same transition to many documents. Every id is
// committed on its own; one failure does not roll back the others.
//
// When ctx ends midway the ids not yet attempted are recorded as failed and
// the partial result is returned together with the context error.
func (s *LifecycleService) BulkTransition(ctx context.Context, kind domain.DocumentKind, ids []uuid.UUID, to string, actor *domain.Actor, reason string) (*domain.BulkTransitionResult, error) {
	if _, err := domain.LifecycleFor(kind); err != nil {
		return nil, err
	}
	if domain.RequiresReason(to) && strings.TrimSpace(reason) == "" {
		return nil, domain.ErrMissingReason
	}

	result := &domain.BulkTransitionResult{
		Succeeded: []uuid.UUID{},
		Failed:    []domain.BulkTransitionFailure{},
	}
	unique := lo.Uniq(ids)
	var ctxErr error
	for i, id := range unique {
		if ctxErr = ctx.Err(); ctxErr != nil {
			for _, skipped := range unique[i:] {
				result.Failed = append(result.Failed, domain.BulkTransitionFailure{ID: skipped, Error: ctxErr.Error()})
			}
			break
		}
		_, err := s.Transition(ctx, TransitionCommand{
			Kind:       kind,
			DocumentID: id,
			To:         to,
			Actor:      actor,
			Reason:     reason,
		})
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkTransitionFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	s.logger.Info("bulk transition finished",
		zap.String("kind", string(kind)),
		zap.String("to", to),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
		zap.Bool("interrupted", ctxErr != nil))

	return result, ctxErr
}

// AllowedTransitions lists the edges actor could take from the document's
// current status
func (s *LifecycleService) AllowedTransitions(ctx context.Context, kind domain.DocumentKind, id uuid.UUID, actor *domain.Actor) ([]domain.AllowedTransitionDTO, error) {
	lc, err := domain.LifecycleFor(kind)
	if err != nil {
		return nil, err
	}
	state, err := s.loadState(ctx, nil, kind, id, actor)
	if err != nil {
		return nil, err
	}

	allowed := []domain.AllowedTransitionDTO{}
	for _, next := range lc.Next(state.Status) {
		guard, _ := lc.Edge(state.Status, next)
		if !actor.Satisfies(guard, state.OwnerID) {
			continue
		}
		allowed = append(allowed, domain.AllowedTransitionDTO{
			To:             next,
			Guard:          guard,
			RequiresReason: domain.RequiresReason(next),
		})
	}
	return allowed, nil
}

// History returns the committed status changes of a document, newest first
func (s *LifecycleService) History(ctx context.Context, kind domain.DocumentKind, id uuid.UUID, actor *domain.Actor) ([]domain.StatusHistoryDTO, error) {
	state, err := s.loadState(ctx, nil, kind, id, actor)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListHistory(ctx, state.OrgID, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	return lo.Map(rows, func(h domain.DocumentStatusHistory, _ int) domain.StatusHistoryDTO {
		return mapper.ToStatusHistoryDTO(&h)
	}), nil
}

// IsClientError reports whether err is one of the lifecycle errors that are
// returned to callers as is and never retried
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrMissingReason) ||
		errors.Is(err, domain.ErrNotEditable)
}
