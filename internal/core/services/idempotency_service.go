package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	portsrepo "github.com/quantabooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/quantabooks/ledger_engine/internal/core/ports/services"

	"github.com/quantabooks/ledger_engine/internal/apperrors"
	"github.com/quantabooks/ledger_engine/internal/core/domain"
	"github.com/quantabooks/ledger_engine/internal/middleware"
)

// idempotencyService gates mutations so a retried request has at most one
// ledger effect. Records are written by the journal repository inside the
// posting transaction; this service only classifies incoming keys.
type idempotencyService struct {
	idempotencyRepo portsrepo.IdempotencyReader
}

// NewIdempotencyService creates a new idempotency gate.
func NewIdempotencyService(idempotencyRepo portsrepo.IdempotencyReader) portssvc.IdempotencyGateSvc {
	return &idempotencyService{idempotencyRepo: idempotencyRepo}
}

var _ portssvc.IdempotencyGateSvc = (*idempotencyService)(nil)

// Admit classifies a (key, requestHash) pair.
//
// Fresh: no record exists, the caller proceeds and records the outcome.
// Replay: a record with a matching hash exists, the stored response is
// returned verbatim and no side effects re-run.
// Conflict: the key was reused with a different payload. This is a client
// bug and fails loudly; the stored record is never overwritten.
func (s *idempotencyService) Admit(ctx context.Context, tenantID, key, requestHash string) (domain.AdmitOutcome, *domain.IdempotencyRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.idempotencyRepo.FindRecordByKey(ctx, tenantID, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.AdmitFresh, nil, nil
		}
		logger.Error("Idempotency record lookup failed", slog.String("error", err.Error()), slog.String("key", key))
		return "", nil, fmt.Errorf("failed to look up idempotency key %s: %w", key, err)
	}

	if record.RequestHash != requestHash {
		logger.Warn("Idempotency key reused with different payload", slog.String("key", key))
		return domain.AdmitConflict, record, fmt.Errorf("%w: key %s", apperrors.ErrIdempotencyConflict, key)
	}

	logger.Info("Idempotent replay detected, returning stored response", slog.String("key", key))
	return domain.AdmitReplay, record, nil
}
