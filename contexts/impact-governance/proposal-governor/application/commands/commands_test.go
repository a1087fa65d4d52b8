package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/adapters/memory"
	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/proposal-governor/domain/errors"
	"wishpact/contexts/impact-governance/proposal-governor/ports"
	"wishpact/contracts/apperrors"
)

type fakeTreasury struct {
	mu          sync.Mutex
	funds       int64
	allocations map[uint64]int64
}

func newFakeTreasury(funds int64) *fakeTreasury {
	return &fakeTreasury{funds: funds, allocations: make(map[uint64]int64)}
}

func (f *fakeTreasury) AvailableFunds(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.funds, nil
}

func (f *fakeTreasury) Allocate(_ context.Context, proposalID uint64, amount int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.allocations[proposalID]; exists {
		return apperrors.New(apperrors.KindConflict, "already allocated")
	}
	if f.funds < amount {
		return apperrors.ErrInsufficientFunds
	}
	f.funds -= amount
	f.allocations[proposalID] = amount
	return nil
}

type recordingOutbox struct {
	mu    sync.Mutex
	types []string
}

func (o *recordingOutbox) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.types = append(o.types, envelope.EventType)
	return nil
}

type failingChain struct{}

func (failingChain) ProposeOnChain(context.Context, entities.Proposal) error {
	return errors.New("bridge offline")
}

func (failingChain) VoteOnChain(context.Context, uint64, string, bool) error {
	return errors.New("bridge offline")
}

func (failingChain) ExecuteOnChain(context.Context, entities.Proposal) error {
	return errors.New("bridge offline")
}

type fixture struct {
	store    *memory.Store
	treasury *fakeTreasury
	outbox   *recordingOutbox
	governor GovernorUseCase
}

func newFixture(funds int64) fixture {
	store := memory.NewStore()
	treasury := newFakeTreasury(funds)
	outbox := &recordingOutbox{}
	return fixture{
		store:    store,
		treasury: treasury,
		outbox:   outbox,
		governor: GovernorUseCase{
			Repo:     store,
			Treasury: treasury,
			Chain:    failingChain{},
			Outbox:   outbox,
			Clock:    store,
			IDGen:    store,
			Quorum:   3,
		},
	}
}

func (f fixture) createPassed(t *testing.T, amount int64) entities.Proposal {
	t.Helper()
	ctx := context.Background()
	proposal, err := f.governor.Create(ctx, CreateProposalCommand{
		ProposerID:      "proposer",
		Title:           "Clean the river",
		AmountRequested: amount,
		Beneficiary:     "river-trust",
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	for _, voter := range []string{"a", "b", "c"} {
		proposal, err = f.governor.Vote(ctx, VoteCommand{ProposalID: proposal.ProposalID, VoterID: voter, InFavor: true})
		if err != nil {
			t.Fatalf("vote %s: %v", voter, err)
		}
	}
	if proposal.Status != entities.ProposalStatusPassed {
		t.Fatalf("expected passed, got %s", proposal.Status)
	}
	return proposal
}

func TestCreateValidatesAndSetsDeadline(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	if _, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "  ", AmountRequested: 10, Beneficiary: "b"}); !errors.Is(err, domainerrors.ErrInvalidProposalInput) {
		t.Fatalf("expected invalid input for blank title, got %v", err)
	}
	if _, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "t", AmountRequested: 0, Beneficiary: "b"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	first, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "first", AmountRequested: 10, Beneficiary: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "second", AmountRequested: 10, Beneficiary: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ProposalID != 1 || second.ProposalID != 2 {
		t.Fatalf("expected sequential ids 1 and 2, got %d and %d", first.ProposalID, second.ProposalID)
	}
	window := first.VotingDeadline.Sub(first.CreatedAt)
	if window != 7*24*time.Hour {
		t.Fatalf("expected seven day voting window, got %s", window)
	}
	if first.Status != entities.ProposalStatusActive {
		t.Fatalf("expected active, got %s", first.Status)
	}
	if len(f.outbox.types) != 2 || f.outbox.types[0] != "proposal_created" {
		t.Fatalf("expected two proposal_created events, got %v", f.outbox.types)
	}
}

func TestVoteRejectsDuplicateAndClosedProposal(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	proposal, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "t", AmountRequested: 10, Beneficiary: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.governor.Vote(ctx, VoteCommand{ProposalID: proposal.ProposalID, VoterID: "v1", InFavor: true}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := f.governor.Vote(ctx, VoteCommand{ProposalID: proposal.ProposalID, VoterID: "v1", InFavor: false}); !errors.Is(err, domainerrors.ErrDuplicateBallot) {
		t.Fatalf("expected duplicate ballot, got %v", err)
	}

	f.store.Advance(8 * 24 * time.Hour)
	if _, err := f.governor.Vote(ctx, VoteCommand{ProposalID: proposal.ProposalID, VoterID: "v2", InFavor: true}); !errors.Is(err, apperrors.ErrState) {
		t.Fatalf("expected state error after deadline, got %v", err)
	}
	if _, err := f.governor.Vote(ctx, VoteCommand{ProposalID: 42, VoterID: "v2", InFavor: true}); !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVoteMajorityAgainstFails(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	proposal, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "t", AmountRequested: 10, Beneficiary: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	choices := map[string]bool{"a": true, "b": false, "c": false}
	for _, voter := range []string{"a", "b", "c"} {
		proposal, err = f.governor.Vote(ctx, VoteCommand{ProposalID: proposal.ProposalID, VoterID: voter, InFavor: choices[voter]})
		if err != nil {
			t.Fatalf("vote %s: %v", voter, err)
		}
	}
	if proposal.Status != entities.ProposalStatusFailed || !proposal.QuorumReached {
		t.Fatalf("expected failed with quorum, got %+v", proposal)
	}
}

func TestExecuteRequiresDeadlineAndRunsOnce(t *testing.T) {
	f := newFixture(1000)
	ctx := context.Background()
	proposal := f.createPassed(t, 400)

	if _, err := f.governor.Execute(ctx, ExecuteCommand{ProposalID: proposal.ProposalID, ExecutorID: "admin"}); !errors.Is(err, domainerrors.ErrVotingStillOpen) {
		t.Fatalf("expected voting still open, got %v", err)
	}

	f.store.Advance(7*24*time.Hour + time.Minute)
	executed, err := f.governor.Execute(ctx, ExecuteCommand{ProposalID: proposal.ProposalID, ExecutorID: "admin"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if executed.Status != entities.ProposalStatusExecuted || executed.ExecutedAt == nil {
		t.Fatalf("expected executed proposal, got %+v", executed)
	}
	if _, err := f.governor.Execute(ctx, ExecuteCommand{ProposalID: proposal.ProposalID, ExecutorID: "admin"}); !errors.Is(err, apperrors.ErrState) {
		t.Fatalf("expected state error on second execution, got %v", err)
	}
	if f.treasury.funds != 600 {
		t.Fatalf("expected 600 remaining, got %d", f.treasury.funds)
	}
}

func TestExecuteInsufficientFunds(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()
	proposal := f.createPassed(t, 400)
	f.store.Advance(8 * 24 * time.Hour)

	if _, err := f.governor.Execute(ctx, ExecuteCommand{ProposalID: proposal.ProposalID, ExecutorID: "admin"}); !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	stored, err := f.store.GetProposal(ctx, proposal.ProposalID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != entities.ProposalStatusPassed {
		t.Fatalf("expected proposal to stay passed, got %s", stored.Status)
	}
}

func TestConcurrentExecuteAllocatesOnce(t *testing.T) {
	f := newFixture(1000)
	ctx := context.Background()
	proposal := f.createPassed(t, 250)
	f.store.Advance(8 * 24 * time.Hour)

	const callers = 12
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.governor.Execute(ctx, ExecuteCommand{ProposalID: proposal.ProposalID, ExecutorID: "admin"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrState), errors.Is(err, apperrors.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one execution, got %d", succeeded)
	}
	if len(f.treasury.allocations) != 1 || f.treasury.funds != 750 {
		t.Fatalf("expected a single allocation of 250, got %v funds=%d", f.treasury.allocations, f.treasury.funds)
	}
}

func TestCloseExpiredFailsStaleProposals(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	stale, err := f.governor.Create(ctx, CreateProposalCommand{ProposerID: "p", Title: "stale", AmountRequested: 10, Beneficiary: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	passed := f.createPassed(t, 10)

	result, err := f.governor.CloseExpired(ctx, 10)
	if err != nil {
		t.Fatalf("close expired: %v", err)
	}
	if result.Closed != 0 {
		t.Fatalf("expected nothing closed before deadline, got %+v", result)
	}

	f.store.Advance(8 * 24 * time.Hour)
	result, err = f.governor.CloseExpired(ctx, 10)
	if err != nil {
		t.Fatalf("close expired: %v", err)
	}
	if result.Scanned != 1 || result.Closed != 1 {
		t.Fatalf("expected one closed proposal, got %+v", result)
	}
	stored, _ := f.store.GetProposal(ctx, stale.ProposalID)
	if stored.Status != entities.ProposalStatusFailed {
		t.Fatalf("expected stale proposal failed, got %s", stored.Status)
	}
	stored, _ = f.store.GetProposal(ctx, passed.ProposalID)
	if stored.Status != entities.ProposalStatusPassed {
		t.Fatalf("expected passed proposal untouched, got %s", stored.Status)
	}
}
