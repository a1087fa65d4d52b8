package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/impact-treasury/domain/errors"
	"wishpact/contexts/impact-governance/impact-treasury/ports"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

const (
	moduleName    = "impact-governance/impact-treasury"
	sourceService = "impact-treasury"
)

type Service struct {
	Repo      ports.Repository
	Proposals ports.ProposalCounter
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

type CreditInput struct {
	WishID      string
	Amount      int64
	Beneficiary string
}

type AllocateInput struct {
	ProposalID  uint64
	Amount      int64
	Beneficiary string
}

// Credit adds the impact share of a failed wish. A second credit for the same
// wish fails with ErrAlreadyCredited and leaves the totals untouched.
func (s Service) Credit(ctx context.Context, input CreditInput) (entities.Credit, error) {
	logger := resolveLogger(s.Logger)
	if strings.TrimSpace(input.WishID) == "" || input.Amount <= 0 {
		return entities.Credit{}, domainerrors.ErrInvalidCreditInput
	}
	credit := entities.Credit{
		WishID:      strings.TrimSpace(input.WishID),
		Amount:      input.Amount,
		Beneficiary: strings.TrimSpace(input.Beneficiary),
		CreditedAt:  s.now(),
	}
	if err := s.Repo.RecordCredit(ctx, credit); err != nil {
		// Reconciler sweeps re-offer every failed wish, so duplicates are routine.
		if errors.Is(err, domainerrors.ErrAlreadyCredited) {
			logger.Debug("treasury credit already recorded",
				"event", "treasury_credit_duplicate",
				"module", moduleName,
				"layer", "application",
				"wish_id", credit.WishID,
			)
			return entities.Credit{}, err
		}
		logger.Warn("treasury credit rejected",
			"event", "treasury_credit_rejected",
			"module", moduleName,
			"layer", "application",
			"wish_id", credit.WishID,
			"amount", credit.Amount,
			"error", err.Error(),
		)
		return entities.Credit{}, err
	}

	s.emit(ctx, contractsv1.EventTreasuryCredited, "wish_id", credit.WishID, credit.CreditedAt, map[string]any{
		"wish_id":     credit.WishID,
		"amount":      credit.Amount,
		"beneficiary": credit.Beneficiary,
	})
	logger.Info("treasury credited",
		"event", "treasury_credited",
		"module", moduleName,
		"layer", "application",
		"wish_id", credit.WishID,
		"amount", credit.Amount,
	)
	return credit, nil
}

// Allocate reserves funds for an executed proposal. The storage adapter
// checks the balance and records the allocation in one conditional write.
func (s Service) Allocate(ctx context.Context, input AllocateInput) (entities.Allocation, error) {
	logger := resolveLogger(s.Logger)
	if input.ProposalID == 0 || input.Amount <= 0 || strings.TrimSpace(input.Beneficiary) == "" {
		return entities.Allocation{}, domainerrors.ErrInvalidAllocationInput
	}
	allocation := entities.Allocation{
		ProposalID:  input.ProposalID,
		Amount:      input.Amount,
		Beneficiary: strings.TrimSpace(input.Beneficiary),
		AllocatedAt: s.now(),
	}
	if err := s.Repo.RecordAllocation(ctx, allocation); err != nil {
		logger.Warn("treasury allocation rejected",
			"event", "treasury_allocation_rejected",
			"module", moduleName,
			"layer", "application",
			"proposal_id", allocation.ProposalID,
			"amount", allocation.Amount,
			"error", err.Error(),
		)
		return entities.Allocation{}, err
	}
	logger.Info("treasury allocated",
		"event", "treasury_allocated",
		"module", moduleName,
		"layer", "application",
		"proposal_id", allocation.ProposalID,
		"amount", allocation.Amount,
		"beneficiary", allocation.Beneficiary,
	)
	return allocation, nil
}

func (s Service) AvailableFunds(ctx context.Context) (int64, error) {
	account, err := s.Repo.GetAccount(ctx)
	if err != nil {
		return 0, err
	}
	return account.AvailableFunds(), nil
}

func (s Service) GetStats(ctx context.Context) (entities.Stats, error) {
	account, err := s.Repo.GetAccount(ctx)
	if err != nil {
		return entities.Stats{}, err
	}
	stats := entities.Stats{
		TotalFunds:     account.TotalFunds,
		AllocatedFunds: account.AllocatedFunds,
		AvailableFunds: account.AvailableFunds(),
		Credits:        account.CreditCount,
	}
	if s.Proposals != nil {
		counts, err := s.Proposals.CountByStatus(ctx)
		if err != nil {
			resolveLogger(s.Logger).Error("treasury proposal count failed",
				"event", "treasury_stats_proposal_count_failed",
				"module", moduleName,
				"layer", "application",
				"error", err.Error(),
			)
			return entities.Stats{}, err
		}
		stats.Proposals = counts
	}
	return stats, nil
}

func (s Service) ListCredits(ctx context.Context, limit int) ([]entities.Credit, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.Repo.ListCredits(ctx, limit)
}

func (s Service) emit(ctx context.Context, eventType string, keyPath string, key string, at time.Time, data map[string]any) {
	if s.Outbox == nil || s.IDGen == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = contractsv1.NewEnvelope(eventID, eventType, sourceService, keyPath, key, at, data)
		if err == nil {
			err = s.Outbox.AppendOutbox(ctx, envelope)
		}
	}
	if err != nil {
		resolveLogger(s.Logger).Warn("treasury outbox append failed",
			"event", "treasury_outbox_append_failed",
			"module", moduleName,
			"layer", "application",
			"event_type", eventType,
			"partition_key", key,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
