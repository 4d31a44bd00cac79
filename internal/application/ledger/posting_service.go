package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Clock supplies the current time; injectable for deterministic tests
type Clock func() time.Time

// PostingRequest describes one balanced entry to post. Lines must
// already balance; the engine validates, it does not fix.
type PostingRequest struct {
	Date        time.Time
	Description string
	Type        ledger.TransactionType
	Reference   string
	ResidenceID uuid.UUID
	// AllowDefaultResidence substitutes the configured default residence
	// when ResidenceID is empty. Only event kinds with no natural
	// residence (some petty cash spends) set this.
	AllowDefaultResidence bool
	Source                ledger.EntrySource
	SourceID              string
	Lines                 []ledger.LineEntry
	Metadata              ledger.Metadata
	StudentID             *uuid.UUID
	CreatedBy             string
}

// PostingResult is the outcome of a posting attempt. Duplicate is true
// when the entry had already been posted for the same (source,
// source_id); Entry then holds the existing entry, not a new one.
type PostingResult struct {
	Transaction *ledger.Transaction
	Entry       *ledger.TransactionEntry
	Duplicate   bool
}

// PostingService is the single write path into the ledger. Every
// business event becomes exactly one balanced, immutable entry here;
// nothing else writes postings.
type PostingService struct {
	transactionRepo  ledger.TransactionRepository
	guard            *DuplicateGuard
	defaultResidence uuid.UUID
	clock            Clock
	logger           *zap.Logger
}

// PostingServiceOption is a functional option for configuring PostingService
type PostingServiceOption func(*PostingService)

// WithClock injects the time source
func WithClock(clock Clock) PostingServiceOption {
	return func(s *PostingService) {
		s.clock = clock
	}
}

// WithDefaultResidence sets the residence substituted for requests that
// allow it and carry none
func WithDefaultResidence(id uuid.UUID) PostingServiceOption {
	return func(s *PostingService) {
		s.defaultResidence = id
	}
}

// NewPostingService creates a new PostingService
func NewPostingService(transactionRepo ledger.TransactionRepository, guard *DuplicateGuard, logger *zap.Logger, opts ...PostingServiceOption) *PostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PostingService{
		transactionRepo: transactionRepo,
		guard:           guard,
		clock:           time.Now,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the engine's current time
func (s *PostingService) Now() time.Time {
	return s.clock()
}

// Post validates and persists one balanced entry. Redelivered events
// return the original entry with Duplicate set instead of an error, so
// callers can treat redelivery as success.
func (s *PostingService) Post(ctx context.Context, req PostingRequest) (*PostingResult, error) {
	residenceID := req.ResidenceID
	if residenceID == uuid.Nil && req.AllowDefaultResidence {
		residenceID = s.defaultResidence
	}
	if residenceID == uuid.Nil {
		return nil, shared.ErrMissingResidence
	}

	if s.guard != nil {
		existing, err := s.guard.Check(ctx, req.Source, req.SourceID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.duplicateResult(ctx, existing)
		}
	}

	date := req.Date
	if date.IsZero() {
		date = s.clock()
	}

	tx, err := ledger.NewTransaction(date, req.Description, req.Type, req.Reference, residenceID, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	entry, err := ledger.NewTransactionEntry(tx.ID, req.Source, req.SourceID, req.Lines, req.Metadata)
	if err != nil {
		return nil, err
	}
	if req.StudentID != nil {
		entry.TagStudent(*req.StudentID)
	}
	tx.Entry = entry

	if err := s.transactionRepo.SaveWithEntry(ctx, tx); err != nil {
		// lost the race with a concurrent delivery of the same event
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.transactionRepo.FindEntryBySource(ctx, req.Source, req.SourceID)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return s.duplicateResult(ctx, existing)
			}
		}
		return nil, err
	}

	if s.guard != nil {
		s.guard.Record(ctx, req.Source, req.SourceID)
	}

	s.logger.Info("posted entry",
		zap.String("entry_id", entry.ID.String()),
		zap.String("source", string(req.Source)),
		zap.String("source_id", req.SourceID),
		zap.String("total", entry.TotalDebit.StringFixed(2)),
		zap.String("residence_id", residenceID.String()))

	return &PostingResult{Transaction: tx, Entry: entry, Duplicate: false}, nil
}

func (s *PostingService) duplicateResult(ctx context.Context, entry *ledger.TransactionEntry) (*PostingResult, error) {
	tx, err := s.transactionRepo.FindTransactionByID(ctx, entry.TransactionID)
	if err != nil {
		return nil, err
	}
	return &PostingResult{Transaction: tx, Entry: entry, Duplicate: true}, nil
}

// Reverse posts the offsetting entry for a posted entry and flips its
// status. The original lines are never modified; the correction is a
// new entry whose lines mirror the original.
func (s *PostingService) Reverse(ctx context.Context, entryID uuid.UUID, reason, createdBy string) (*PostingResult, error) {
	original, err := s.transactionRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, shared.ErrNotFound
	}
	if !original.IsPosted() {
		return nil, shared.ErrImmutableEntry
	}

	originalTx, err := s.transactionRepo.FindTransactionByID(ctx, original.TransactionID)
	if err != nil {
		return nil, err
	}
	if originalTx == nil {
		return nil, shared.ErrNotFound
	}

	result, err := s.Post(ctx, PostingRequest{
		Date:        s.clock(),
		Description: "Reversal of " + originalTx.Description + ": " + reason,
		Type:        ledger.TransactionTypeReversal,
		Reference:   originalTx.Reference,
		ResidenceID: originalTx.ResidenceID,
		Source:      ledger.SourceReversal,
		SourceID:    original.ID.String(),
		Lines:       original.OffsetLines(),
		Metadata: ledger.Metadata{
			ledger.MetaReversedEntryID: original.ID.String(),
		},
		StudentID: original.StudentID,
		CreatedBy: createdBy,
	})
	if err != nil {
		return nil, err
	}
	if result.Duplicate {
		return result, nil
	}

	if err := original.MarkReversed(result.Entry.ID); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.UpdateEntryStatus(ctx, original); err != nil {
		return nil, err
	}

	s.logger.Info("reversed entry",
		zap.String("entry_id", original.ID.String()),
		zap.String("offset_entry_id", result.Entry.ID.String()))

	return result, nil
}
