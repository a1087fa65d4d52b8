package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/ports"

	"github.com/google/uuid"
)

// Store is the in-process storage boundary. Every conditional write runs
// under the store lock, which gives the same single-winner semantics as the
// SQL adapter's guarded statements.
type Store struct {
	mu sync.RWMutex

	wishes  map[string]entities.Wish
	pledges map[string][]entities.Pledge
	proofs  map[string][]entities.Proof
	votes   map[string]map[string]entities.Vote
	offset  time.Duration
}

func NewStore(seed []entities.Wish) *Store {
	wishes := make(map[string]entities.Wish, len(seed))
	for _, wish := range seed {
		wishes[wish.WishID] = wish
	}
	return &Store{
		wishes:  wishes,
		pledges: make(map[string][]entities.Pledge),
		proofs:  make(map[string][]entities.Proof),
		votes:   make(map[string]map[string]entities.Vote),
	}
}

// Advance moves the store clock forward.
func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset += d
}

func (s *Store) CreateWish(_ context.Context, wish entities.Wish) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wishes[wish.WishID]; exists {
		return domainerrors.ErrConflict
	}
	s.wishes[wish.WishID] = wish
	return nil
}

func (s *Store) GetWish(_ context.Context, wishID string) (entities.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wish, ok := s.wishes[strings.TrimSpace(wishID)]
	if !ok {
		return entities.Wish{}, domainerrors.ErrWishNotFound
	}
	return wish, nil
}

func (s *Store) ListWishes(_ context.Context) ([]entities.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Wish, 0, len(s.wishes))
	for _, wish := range s.wishes {
		items = append(items, wish)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].WishID < items[j].WishID })
	return items, nil
}

func (s *Store) ListPledges(_ context.Context) ([]entities.Pledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []entities.Pledge
	for _, pledges := range s.pledges {
		items = append(items, pledges...)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (s *Store) ListWishesByStatus(
	_ context.Context,
	status entities.WishStatus,
	afterID string,
	limit int,
) ([]entities.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Wish, 0)
	for _, wish := range s.wishes {
		if wish.Status == status && wish.WishID > afterID {
			items = append(items, wish)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].WishID < items[j].WishID })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListOverdueWishes(
	_ context.Context,
	status entities.WishStatus,
	now time.Time,
	limit int,
) ([]entities.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Wish, 0)
	for _, wish := range s.wishes {
		if wish.Status == status && now.After(wish.Deadline) {
			items = append(items, wish)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Deadline.Before(items[j].Deadline) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) RecordPledge(_ context.Context, pledge entities.Pledge) (entities.Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wish, ok := s.wishes[pledge.WishID]
	if !ok {
		return entities.Wish{}, domainerrors.ErrWishNotFound
	}
	if !wish.Status.AcceptsPledges() {
		return entities.Wish{}, domainerrors.ErrWishFinalized
	}
	wish.PledgeTotal += pledge.Amount
	wish.PledgeCount++
	wish.UpdatedAt = pledge.CreatedAt
	s.wishes[wish.WishID] = wish
	s.pledges[wish.WishID] = append(s.pledges[wish.WishID], pledge)
	return wish, nil
}

func (s *Store) HasPledge(_ context.Context, wishID string, supporterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pledge := range s.pledges[strings.TrimSpace(wishID)] {
		if pledge.SupporterID == strings.TrimSpace(supporterID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SubmitProof(_ context.Context, proof entities.Proof, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wish, ok := s.wishes[proof.WishID]
	if !ok {
		return domainerrors.ErrWishNotFound
	}
	if wish.Status != entities.WishStatusActive {
		return domainerrors.ErrWishNotActive
	}
	wish.Status = entities.WishStatusPendingVerification
	wish.UpdatedAt = at
	s.wishes[wish.WishID] = wish
	s.proofs[wish.WishID] = append(s.proofs[wish.WishID], proof)
	return nil
}

func (s *Store) GetLatestProof(_ context.Context, wishID string) (entities.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.proofs[strings.TrimSpace(wishID)]
	if len(items) == 0 {
		return entities.Proof{}, domainerrors.ErrProofNotFound
	}
	return items[len(items)-1], nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wish, ok := s.wishes[vote.WishID]
	if !ok {
		return domainerrors.ErrWishNotFound
	}
	if wish.Status != entities.WishStatusPendingVerification {
		return domainerrors.ErrWishNotPendingVerification
	}
	byVoter, ok := s.votes[vote.WishID]
	if !ok {
		byVoter = make(map[string]entities.Vote)
		s.votes[vote.WishID] = byVoter
	}
	if _, exists := byVoter[vote.VoterID]; exists {
		return domainerrors.ErrDuplicateVote
	}
	byVoter[vote.VoterID] = vote
	wish.VoteCount++
	wish.UpdatedAt = vote.CreatedAt
	s.wishes[wish.WishID] = wish
	return nil
}

func (s *Store) ListVotes(_ context.Context, wishID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byVoter := s.votes[strings.TrimSpace(wishID)]
	items := make([]entities.Vote, 0, len(byVoter))
	for _, vote := range byVoter {
		items = append(items, vote)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) TransitionWishStatus(
	_ context.Context,
	wishID string,
	from entities.WishStatus,
	to entities.WishStatus,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wish, ok := s.wishes[strings.TrimSpace(wishID)]
	if !ok {
		return false, domainerrors.ErrWishNotFound
	}
	if wish.Status != from {
		return false, nil
	}
	wish.Status = to
	wish.UpdatedAt = at
	if to.Terminal() {
		resolvedAt := at
		wish.ResolvedAt = &resolvedAt
	}
	s.wishes[wish.WishID] = wish
	return true, nil
}

func (s *Store) SettleWish(
	_ context.Context,
	wishID string,
	voteCount int,
	to entities.WishStatus,
	at time.Time,
) (entities.Wish, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wish, ok := s.wishes[strings.TrimSpace(wishID)]
	if !ok {
		return entities.Wish{}, false, domainerrors.ErrWishNotFound
	}
	if wish.Status != entities.WishStatusPendingVerification || wish.VoteCount != voteCount {
		return entities.Wish{}, false, nil
	}
	resolvedAt := at
	wish.Status = to
	wish.UpdatedAt = at
	wish.ResolvedAt = &resolvedAt
	s.wishes[wish.WishID] = wish
	return wish, true, nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().UTC().Add(s.offset)
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.WishRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
