package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/resledger/backend/internal/domain/ledger"
	"github.com/resledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DuplicateGuard detects redelivered business events before the posting
// engine writes anything. It is a fast-path pre-check layered on top of
// the real guarantee: the storage layer's unique constraint on
// (source, source_id). The guard consults an idempotency store (which
// may restart empty) and falls back to a ledger lookup within a recency
// window, so a lost store never admits a duplicate that the constraint
// would not also catch.
type DuplicateGuard struct {
	transactionRepo ledger.TransactionRepository
	store           shared.IdempotencyStore
	window          time.Duration
	ttl             time.Duration
	logger          *zap.Logger
}

// NewDuplicateGuard creates a new DuplicateGuard. A nil store disables
// the fast path; the ledger lookup and unique constraint still hold.
func NewDuplicateGuard(transactionRepo ledger.TransactionRepository, store shared.IdempotencyStore, window, ttl time.Duration, logger *zap.Logger) *DuplicateGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return &DuplicateGuard{
		transactionRepo: transactionRepo,
		store:           store,
		window:          window,
		ttl:             ttl,
		logger:          logger,
	}
}

func idempotencyKey(source ledger.EntrySource, sourceID string) string {
	return fmt.Sprintf("ledger:%s:%s", source, sourceID)
}

// Check returns the already-posted entry for a (source, source_id) pair
// if one exists. A hit in the idempotency store without a matching
// ledger entry is treated as a miss.
func (g *DuplicateGuard) Check(ctx context.Context, source ledger.EntrySource, sourceID string) (*ledger.TransactionEntry, error) {
	if sourceID == "" {
		return nil, nil
	}

	if g.store != nil {
		seen, err := g.store.IsProcessed(ctx, idempotencyKey(source, sourceID))
		if err != nil {
			// the store is an optimization; degrade to the ledger lookup
			g.logger.Warn("idempotency store lookup failed", zap.Error(err))
		} else if !seen {
			return nil, nil
		}
	}

	entry, err := g.transactionRepo.FindEntryBySource(ctx, source, sourceID)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		g.logger.Info("duplicate event suppressed",
			zap.String("source", string(source)),
			zap.String("source_id", sourceID),
			zap.String("entry_id", entry.ID.String()))
	}
	return entry, nil
}

// Record marks a (source, source_id) pair processed in the idempotency
// store. Failures are logged, not returned: the posting already
// succeeded and the unique constraint covers redelivery.
func (g *DuplicateGuard) Record(ctx context.Context, source ledger.EntrySource, sourceID string) {
	if g.store == nil || sourceID == "" {
		return
	}
	if _, err := g.store.MarkProcessed(ctx, idempotencyKey(source, sourceID), g.ttl); err != nil {
		g.logger.Warn("failed to record idempotency key",
			zap.String("source", string(source)),
			zap.String("source_id", sourceID),
			zap.Error(err))
	}
}

// Window returns the recency window used for startup reconciliation
func (g *DuplicateGuard) Window() time.Duration {
	return g.window
}

// WarmUp reloads recent (source, source_id) pairs from the ledger into
// the idempotency store after a restart, restoring the fast path for
// events redelivered across the restart.
func (g *DuplicateGuard) WarmUp(ctx context.Context, sources ...ledger.EntrySource) error {
	if g.store == nil {
		return nil
	}
	since := time.Now().Add(-g.window)
	for _, source := range sources {
		entries, err := g.transactionRepo.FindRecentEntries(ctx, source, since)
		if err != nil {
			return err
		}
		for i := range entries {
			if entries[i].SourceID == "" {
				continue
			}
			if _, err := g.store.MarkProcessed(ctx, idempotencyKey(source, entries[i].SourceID), g.ttl); err != nil {
				return err
			}
		}
		g.logger.Debug("warmed idempotency store",
			zap.String("source", string(source)),
			zap.Int("entries", len(entries)))
	}
	return nil
}
