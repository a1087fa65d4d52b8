package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/proposal-governor/domain/errors"
	"wishpact/contexts/impact-governance/proposal-governor/domain/services"
	"wishpact/contexts/impact-governance/proposal-governor/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	proposals map[uint64]entities.Proposal
	ballots   map[uint64]map[string]entities.Ballot
	nextID    uint64
	offset    time.Duration
}

func NewStore() *Store {
	return &Store{
		proposals: make(map[uint64]entities.Proposal),
		ballots:   make(map[uint64]map[string]entities.Ballot),
	}
}

// Advance moves the store clock forward.
func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset += d
}

func (s *Store) CreateProposal(_ context.Context, proposal entities.Proposal) (entities.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	proposal.ProposalID = s.nextID
	s.proposals[proposal.ProposalID] = proposal
	return proposal, nil
}

func (s *Store) GetProposal(_ context.Context, proposalID uint64) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) ListProposals(_ context.Context, status entities.ProposalStatus, limit int) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		if status == "" || proposal.Status == status {
			items = append(items, proposal)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProposalID > items[j].ProposalID })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) RecordBallot(_ context.Context, ballot entities.Ballot, quorum int, at time.Time) (entities.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[ballot.ProposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	if !services.AcceptsBallots(proposal, at) {
		return entities.Proposal{}, domainerrors.ErrProposalNotActive
	}
	byVoter, ok := s.ballots[ballot.ProposalID]
	if !ok {
		byVoter = make(map[string]entities.Ballot)
		s.ballots[ballot.ProposalID] = byVoter
	}
	if _, exists := byVoter[ballot.VoterID]; exists {
		return entities.Proposal{}, domainerrors.ErrDuplicateBallot
	}
	byVoter[ballot.VoterID] = ballot
	proposal = services.ApplyBallot(proposal, ballot.InFavor, quorum, at)
	s.proposals[proposal.ProposalID] = proposal
	return proposal, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	proposalID uint64,
	from entities.ProposalStatus,
	to entities.ProposalStatus,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return false, domainerrors.ErrProposalNotFound
	}
	if proposal.Status != from {
		return false, nil
	}
	proposal.Status = to
	proposal.UpdatedAt = at
	s.proposals[proposalID] = proposal
	return true, nil
}

func (s *Store) MarkExecuted(_ context.Context, proposalID uint64, executorID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return false, domainerrors.ErrProposalNotFound
	}
	if proposal.Status != entities.ProposalStatusPassed || proposal.ExecutedAt != nil {
		return false, nil
	}
	executedAt := at
	proposal.Status = entities.ProposalStatusExecuted
	proposal.ExecutedAt = &executedAt
	proposal.ExecutedBy = executorID
	proposal.UpdatedAt = at
	s.proposals[proposalID] = proposal
	return true, nil
}

func (s *Store) ListExpiredActive(_ context.Context, now time.Time, limit int) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0)
	for _, proposal := range s.proposals {
		if proposal.Status == entities.ProposalStatusActive && now.After(proposal.VotingDeadline) {
			items = append(items, proposal)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProposalID < items[j].ProposalID })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) CountByStatus(_ context.Context) (entities.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts entities.StatusCounts
	for _, proposal := range s.proposals {
		counts.Add(proposal.Status, 1)
	}
	return counts, nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().UTC().Add(s.offset)
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
