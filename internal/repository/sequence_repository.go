package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amalthea/finance-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSequencePadding is the zero padded width of a document number
const DefaultSequencePadding = 5

// SequenceRepository handles database operations for document sequences.
// A sequence is keyed by (org_id, doc_type) and is shared by every document
// of that type in the organization.
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

func newSequence(orgID uuid.UUID, docType domain.DocType) *domain.DocumentSequence {
	return &domain.DocumentSequence{
		OrgID:   orgID,
		DocType: docType,
		Prefix:  string(docType),
		NextVal: 1,
		Padding: DefaultSequencePadding,
	}
}

// Next hands out the current next_val of the sequence and increments the
// stored value by one. The row is created on first use and locked for the
// rest of the transaction, so concurrent callers on the same key serialize
// while other keys are unaffected.
//
// The returned sequence carries the handed out value in NextVal.
func (r *SequenceRepository) Next(ctx context.Context, orgID uuid.UUID, docType domain.DocType) (*domain.DocumentSequence, error) {
	var seq domain.DocumentSequence

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Racing creators both succeed here; only one row survives
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(newSequence(orgID, docType)).Error; err != nil {
			return fmt.Errorf("failed to create document sequence: %w", err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ? AND doc_type = ?", orgID, docType).
			First(&seq).Error; err != nil {
			return fmt.Errorf("failed to lock document sequence: %w", err)
		}

		result := tx.Model(&domain.DocumentSequence{}).
			Where("org_id = ? AND doc_type = ? AND next_val = ?", orgID, docType, seq.NextVal).
			Updates(map[string]interface{}{
				"next_val":   gorm.Expr("next_val + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to increment document sequence: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("document sequence %s/%s changed while locked", orgID, docType)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &seq, nil
}

// Get returns the stored sequence without modifying it, or nil when the
// sequence has not been used yet
func (r *SequenceRepository) Get(ctx context.Context, orgID uuid.UUID, docType domain.DocType) (*domain.DocumentSequence, error) {
	var seq domain.DocumentSequence
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND doc_type = ?", orgID, docType).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document sequence: %w", err)
	}
	return &seq, nil
}

// Raise sets next_val to value when value is higher than the stored one.
// It never lowers a sequence. Used when importing documents numbered elsewhere.
func (r *SequenceRepository) Raise(ctx context.Context, orgID uuid.UUID, docType domain.DocType, value int64) (*domain.DocumentSequence, error) {
	var seq domain.DocumentSequence

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(newSequence(orgID, docType)).Error; err != nil {
			return fmt.Errorf("failed to create document sequence: %w", err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("org_id = ? AND doc_type = ?", orgID, docType).
			First(&seq).Error; err != nil {
			return fmt.Errorf("failed to lock document sequence: %w", err)
		}

		if value <= seq.NextVal {
			return nil
		}
		if err := tx.Model(&domain.DocumentSequence{}).
			Where("org_id = ? AND doc_type = ?", orgID, docType).
			Updates(map[string]interface{}{
				"next_val":   value,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to raise document sequence: %w", err)
		}
		seq.NextVal = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// ListByOrg returns all sequences of an organization
func (r *SequenceRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.DocumentSequence, error) {
	var sequences []domain.DocumentSequence
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("doc_type ASC").
		Find(&sequences).Error
	return sequences, err
}
