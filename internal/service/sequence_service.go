package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/amalthea/finance-api/internal/mapper"
	"github.com/amalthea/finance-api/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SequenceOptions tunes how long allocation keeps retrying the store before
// falling back to a provisional number
type SequenceOptions struct {
	AllocationTimeout time.Duration
	InitialBackoff    time.Duration
}

// DefaultSequenceOptions returns the options used when none are configured
func DefaultSequenceOptions() SequenceOptions {
	return SequenceOptions{
		AllocationTimeout: 3 * time.Second,
		InitialBackoff:    50 * time.Millisecond,
	}
}

// SequenceService hands out document numbers per organization and doc type.
//
// Format: {PREFIX}-{SEQUENCE}, the sequence zero padded to five digits.
// Example: SO-00001, INV-00042
type SequenceService struct {
	repo   *repository.SequenceRepository
	opts   SequenceOptions
	now    func() time.Time
	logger *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(repo *repository.SequenceRepository, opts SequenceOptions, logger *zap.Logger) *SequenceService {
	defaults := DefaultSequenceOptions()
	if opts.AllocationTimeout <= 0 {
		opts.AllocationTimeout = defaults.AllocationTimeout
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaults.InitialBackoff
	}
	return &SequenceService{
		repo:   repo,
		opts:   opts,
		now:    time.Now,
		logger: logger,
	}
}

func validateSequenceKey(orgID uuid.UUID, docType domain.DocType) error {
	if orgID == uuid.Nil {
		return fmt.Errorf("%w: organization is required", ErrInvalidInput)
	}
	if !docType.IsValid() {
		return fmt.Errorf("%w: unsupported doc type %q", ErrInvalidInput, docType)
	}
	return nil
}

// FormatNumber renders a sequence value as {prefix}-{zero padded value}
func FormatNumber(prefix string, value int64, padding int) string {
	return fmt.Sprintf("%s-%0*d", prefix, padding, value)
}

// Allocate returns the next number for (orgID, docType).
//
// Store failures are never returned. Allocation is retried with exponential
// backoff for at most the allocation timeout, after which a provisional
// number of the form {doc_type}-{unix millis} is returned instead.
func (s *SequenceService) Allocate(ctx context.Context, orgID uuid.UUID, docType domain.DocType) (domain.AllocatedNumber, error) {
	if err := validateSequenceKey(orgID, docType); err != nil {
		return domain.AllocatedNumber{}, err
	}

	allocCtx, cancel := context.WithTimeout(ctx, s.opts.AllocationTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.InitialBackoff
	b.MaxElapsedTime = s.opts.AllocationTimeout

	attempts := 0
	seq, err := backoff.RetryWithData(func() (*domain.DocumentSequence, error) {
		attempts++
		return s.repo.Next(allocCtx, orgID, docType)
	}, backoff.WithContext(b, allocCtx))
	if err != nil {
		number := fmt.Sprintf("%s-%d", docType, s.now().UnixMilli())
		s.logger.Warn("SequenceAllocationDegraded",
			zap.String("org_id", orgID.String()),
			zap.String("doc_type", string(docType)),
			zap.String("provisional_number", number),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return domain.AllocatedNumber{Number: number, Provisional: true}, nil
	}

	number := FormatNumber(seq.Prefix, seq.NextVal, seq.Padding)
	s.logger.Debug("allocated document number",
		zap.String("number", number),
		zap.String("org_id", orgID.String()),
		zap.String("doc_type", string(docType)),
		zap.Int64("value", seq.NextVal))

	return domain.AllocatedNumber{Number: number, Value: seq.NextVal}, nil
}

// Peek returns the stored sequence without allocating. A sequence that was
// never used reports the values its first allocation would create.
func (s *SequenceService) Peek(ctx context.Context, orgID uuid.UUID, docType domain.DocType) (*domain.SequenceDTO, error) {
	if err := validateSequenceKey(orgID, docType); err != nil {
		return nil, err
	}
	seq, err := s.repo.Get(ctx, orgID, docType)
	if err != nil {
		return nil, err
	}
	if seq == nil {
		return &domain.SequenceDTO{
			DocType:   docType,
			Prefix:    string(docType),
			NextValue: 1,
			Padding:   repository.DefaultSequencePadding,
		}, nil
	}
	dto := mapper.ToSequenceDTO(seq)
	return &dto, nil
}

// Initialize raises next_val to next so numbers already used elsewhere are
// not handed out again. It never lowers a sequence.
func (s *SequenceService) Initialize(ctx context.Context, orgID uuid.UUID, docType domain.DocType, next int64) (*domain.SequenceDTO, error) {
	if err := validateSequenceKey(orgID, docType); err != nil {
		return nil, err
	}
	if next < 1 {
		return nil, fmt.Errorf("%w: next value must be at least 1", ErrInvalidInput)
	}
	seq, err := s.repo.Raise(ctx, orgID, docType, next)
	if err != nil {
		return nil, err
	}
	s.logger.Info("initialized document sequence",
		zap.String("org_id", orgID.String()),
		zap.String("doc_type", string(docType)),
		zap.Int64("next_val", seq.NextVal))
	dto := mapper.ToSequenceDTO(seq)
	return &dto, nil
}

// List returns every sequence the organization has used, ordered by doc type
func (s *SequenceService) List(ctx context.Context, orgID uuid.UUID) ([]domain.SequenceDTO, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization is required", ErrInvalidInput)
	}
	sequences, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list document sequences: %w", err)
	}
	return lo.Map(sequences, func(seq domain.DocumentSequence, _ int) domain.SequenceDTO {
		return mapper.ToSequenceDTO(&seq)
	}), nil
}
