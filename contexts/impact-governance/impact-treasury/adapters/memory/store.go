package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/impact-treasury/domain/errors"
	"wishpact/contexts/impact-governance/impact-treasury/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	credits     map[string]entities.Credit
	allocations map[uint64]entities.Allocation
	account     entities.Account
}

func NewStore() *Store {
	return &Store{
		credits:     make(map[string]entities.Credit),
		allocations: make(map[uint64]entities.Allocation),
	}
}

func (s *Store) RecordCredit(_ context.Context, credit entities.Credit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.credits[credit.WishID]; exists {
		return domainerrors.ErrAlreadyCredited
	}
	s.credits[credit.WishID] = credit
	s.account.TotalFunds += credit.Amount
	s.account.CreditCount++
	return nil
}

func (s *Store) RecordAllocation(_ context.Context, allocation entities.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.allocations[allocation.ProposalID]; exists {
		return domainerrors.ErrAlreadyAllocated
	}
	if s.account.AvailableFunds() < allocation.Amount {
		return domainerrors.ErrInsufficientFunds
	}
	s.allocations[allocation.ProposalID] = allocation
	s.account.AllocatedFunds += allocation.Amount
	return nil
}

func (s *Store) GetAccount(_ context.Context) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, nil
}

func (s *Store) ListCredits(_ context.Context, limit int) ([]entities.Credit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Credit, 0, len(s.credits))
	for _, credit := range s.credits {
		items = append(items, credit)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreditedAt.Equal(items[j].CreditedAt) {
			return items[i].WishID < items[j].WishID
		}
		return items[i].CreditedAt.After(items[j].CreditedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
