package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"wishpact/contexts/wish-verification/verification-service/adapters/memory"
	"wishpact/contexts/wish-verification/verification-service/application/queries"
	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	domainerrors "wishpact/contexts/wish-verification/verification-service/domain/errors"
	"wishpact/contexts/wish-verification/verification-service/domain/proofs"
	"wishpact/contexts/wish-verification/verification-service/ports"
	"wishpact/contracts/apperrors"
)

type fakeTreasury struct {
	mu       sync.Mutex
	credited map[string]int64
	calls    int
}

func (f *fakeTreasury) Credit(_ context.Context, credit ports.TreasuryCredit) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.credited == nil {
		f.credited = make(map[string]int64)
	}
	if _, ok := f.credited[credit.WishID]; ok {
		return false, nil
	}
	f.credited[credit.WishID] = credit.Amount
	return true, nil
}

type recordingOutbox struct {
	mu     sync.Mutex
	events []ports.EventEnvelope
}

func (o *recordingOutbox) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, envelope)
	return nil
}

func (o *recordingOutbox) count(eventType string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := 0
	for _, event := range o.events {
		if event.EventType == eventType {
			total++
		}
	}
	return total
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, string, string, string) error {
	return errors.New("notification channel down")
}

type fixture struct {
	store    *memory.Store
	treasury *fakeTreasury
	outbox   *recordingOutbox
	wishes   WishUseCase
	votes    VoteUseCase
	resolver ResolutionUseCase
}

func newFixture(seed ...entities.Wish) fixture {
	store := memory.NewStore(seed)
	treasury := &fakeTreasury{}
	outbox := &recordingOutbox{}
	status := queries.VerificationStatusUseCase{Wishes: store, Clock: store}
	resolver := ResolutionUseCase{
		Wishes:   store,
		Status:   status,
		Treasury: treasury,
		Outbox:   outbox,
		Notifier: failingNotifier{},
		Clock:    store,
		IDGen:    store,
	}
	return fixture{
		store:    store,
		treasury: treasury,
		outbox:   outbox,
		resolver: resolver,
		wishes: WishUseCase{
			Wishes:   store,
			Outbox:   outbox,
			Notifier: failingNotifier{},
			Clock:    store,
			IDGen:    store,
		},
		votes: VoteUseCase{
			Wishes:   store,
			Resolver: resolver,
			Outbox:   outbox,
			Notifier: failingNotifier{},
			Clock:    store,
			IDGen:    store,
		},
	}
}

func pendingWish(id string, deadline time.Time) entities.Wish {
	return entities.Wish{
		WishID:        id,
		CreatorID:     "creator_1",
		Title:         "Run a marathon",
		StakeAmount:   1000,
		PledgeTotal:   500,
		Deadline:      deadline,
		ProofMethod:   entities.ProofMethodMedia,
		Status:        entities.WishStatusPendingVerification,
		ImpactPercent: 50,
		Beneficiary:   "charity_1",
		CreatedAt:     deadline.Add(-48 * time.Hour),
	}
}

func TestCastVoteResolvesWhenQuorumReached(t *testing.T) {
	deadline := time.Now().UTC().Add(24 * time.Hour)
	f := newFixture(pendingWish("wish_1", deadline))
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		result, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: fmt.Sprintf("voter_%d", i), Choice: entities.VoteChoiceYes})
		if err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
		if result.Status != entities.WishStatusPendingVerification {
			t.Fatalf("vote %d: expected pending, got %s", i, result.Status)
		}
	}
	result, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "voter_9", Choice: entities.VoteChoiceYes})
	if err != nil {
		t.Fatalf("decisive vote failed: %v", err)
	}
	if result.Status != entities.WishStatusVerified || result.Decision != entities.DecisionApproved {
		t.Fatalf("expected verified/approved, got %s/%s", result.Status, result.Decision)
	}
	if result.TotalVotes != 10 {
		t.Fatalf("expected 10 votes, got %d", result.TotalVotes)
	}

	_, err = f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "voter_10", Choice: entities.VoteChoiceNo})
	if !errors.Is(err, domainerrors.ErrWishNotPendingVerification) {
		t.Fatalf("expected vote after resolution to be rejected, got %v", err)
	}
	if got := f.outbox.count("wish_resolved"); got != 1 {
		t.Fatalf("expected one wish_resolved event, got %d", got)
	}
	if f.treasury.calls != 0 {
		t.Fatalf("verified wish must not credit treasury")
	}
}

func TestCastVoteBelowQuorumStaysPending(t *testing.T) {
	f := newFixture(pendingWish("wish_1", time.Now().UTC().Add(time.Hour)))
	ctx := context.Background()

	if _, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "a", Choice: entities.VoteChoiceYes}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "b", Choice: entities.VoteChoiceNo})
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if result.Decision != entities.DecisionPending || result.Status != entities.WishStatusPendingVerification {
		t.Fatalf("expected pending, got %s/%s", result.Status, result.Decision)
	}
	if result.TotalVotes != 2 {
		t.Fatalf("expected 2 votes, got %d", result.TotalVotes)
	}
}

func TestCastVoteRejectsDuplicateVoter(t *testing.T) {
	f := newFixture(pendingWish("wish_1", time.Now().UTC().Add(time.Hour)))
	ctx := context.Background()

	if _, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "a", Choice: entities.VoteChoiceYes}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "a", Choice: entities.VoteChoiceNo})
	if !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote error, got %v", err)
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict kind, got %v", err)
	}
}

func TestCastVoteWeightsPledgers(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	wish.Status = entities.WishStatusActive
	f := newFixture(wish)
	ctx := context.Background()

	if _, err := f.wishes.RecordPledge(ctx, RecordPledgeCommand{WishID: "wish_1", SupporterID: "backer", Amount: 50}); err != nil {
		t.Fatalf("pledge failed: %v", err)
	}
	if _, err := f.store.TransitionWishStatus(ctx, "wish_1", entities.WishStatusActive, entities.WishStatusPendingVerification, time.Now()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	backer, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "backer", Choice: entities.VoteChoiceYes})
	if err != nil {
		t.Fatalf("backer vote failed: %v", err)
	}
	stranger, err := f.votes.CastVote(ctx, CastVoteCommand{WishID: "wish_1", VoterID: "stranger", Choice: entities.VoteChoiceYes})
	if err != nil {
		t.Fatalf("stranger vote failed: %v", err)
	}
	if backer.Weight != 3 || stranger.Weight != 1 {
		t.Fatalf("expected weights 3 and 1, got %d and %d", backer.Weight, stranger.Weight)
	}
}

func TestSubmitProofRequiresCreator(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	wish.Status = entities.WishStatusActive
	f := newFixture(wish)
	payload := proofs.MediaPayload{ContentURI: "https://cdn.example.com/finish.jpg", ContentHash: "abc123"}

	_, err := f.wishes.SubmitProof(context.Background(), SubmitProofCommand{WishID: "wish_1", SubmitterID: "intruder", Payload: payload})
	if !errors.Is(err, domainerrors.ErrNotWishCreator) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	stored, _ := f.store.GetWish(context.Background(), "wish_1")
	if stored.Status != entities.WishStatusActive {
		t.Fatalf("status must not change, got %s", stored.Status)
	}
}

func TestSubmitProofMovesWishIntoVerification(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	wish.Status = entities.WishStatusActive
	f := newFixture(wish)
	ctx := context.Background()
	payload := proofs.MediaPayload{ContentURI: "https://cdn.example.com/finish.jpg", ContentHash: "abc123"}

	result, err := f.wishes.SubmitProof(ctx, SubmitProofCommand{WishID: "wish_1", SubmitterID: "creator_1", Payload: payload})
	if err != nil {
		t.Fatalf("submit proof failed: %v", err)
	}
	if result.Status != entities.WishStatusPendingVerification || result.ProofID == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := f.store.GetLatestProof(ctx, "wish_1"); err != nil {
		t.Fatalf("proof not stored: %v", err)
	}

	_, err = f.wishes.SubmitProof(ctx, SubmitProofCommand{WishID: "wish_1", SubmitterID: "creator_1", Payload: payload})
	if !errors.Is(err, domainerrors.ErrWishNotActive) {
		t.Fatalf("expected second submission to fail with state error, got %v", err)
	}
}

func TestSubmitProofRejectsMismatchedPayload(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	wish.Status = entities.WishStatusActive
	f := newFixture(wish)

	_, err := f.wishes.SubmitProof(context.Background(), SubmitProofCommand{
		WishID:      "wish_1",
		SubmitterID: "creator_1",
		Payload:     proofs.ExternalActivityPayload{Provider: "strava", ActivityID: "123"},
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveAfterDeadlineCreditsImpactOnce(t *testing.T) {
	f := newFixture(pendingWish("wish_1", time.Now().UTC().Add(time.Hour)))
	f.store.Advance(2 * time.Hour)
	ctx := context.Background()

	const callers = 16
	results := make([]ResolveResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.resolver.Resolve(ctx, "wish_1")
			if err != nil {
				t.Errorf("resolve %d failed: %v", i, err)
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	transitioned := 0
	for _, result := range results {
		if result.Status != entities.WishStatusFailed {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.Transitioned {
			transitioned++
			if result.ImpactAmount != 750 || !result.TreasuryCredited {
				t.Fatalf("unexpected winner result: %+v", result)
			}
		}
	}
	if transitioned != 1 {
		t.Fatalf("expected exactly one transition, got %d", transitioned)
	}
	if f.treasury.calls != 1 || f.treasury.credited["wish_1"] != 750 {
		t.Fatalf("expected one credit of 750, got calls=%d credited=%v", f.treasury.calls, f.treasury.credited)
	}
	if got := f.outbox.count("wish_resolved"); got != 1 {
		t.Fatalf("expected one wish_resolved event, got %d", got)
	}
}

func TestResolveTerminalWishIsNoop(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(-time.Hour))
	wish.Status = entities.WishStatusVerified
	f := newFixture(wish)

	result, err := f.resolver.Resolve(context.Background(), "wish_1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.Transitioned || result.Decision != entities.DecisionApproved {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestResolveActiveWishIsStateError(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	wish.Status = entities.WishStatusActive
	f := newFixture(wish)

	_, err := f.resolver.Resolve(context.Background(), "wish_1")
	if !errors.Is(err, apperrors.ErrState) {
		t.Fatalf("expected state error, got %v", err)
	}
}

func TestRecordPledgeFrozenAfterResolution(t *testing.T) {
	wish := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	wish.Status = entities.WishStatusFailed
	f := newFixture(wish)

	_, err := f.wishes.RecordPledge(context.Background(), RecordPledgeCommand{WishID: "wish_1", SupporterID: "late", Amount: 10})
	if !errors.Is(err, domainerrors.ErrWishFinalized) {
		t.Fatalf("expected finalized error, got %v", err)
	}
	stored, _ := f.store.GetWish(context.Background(), "wish_1")
	if stored.PledgeTotal != 500 {
		t.Fatalf("pledge total changed to %d", stored.PledgeTotal)
	}
}

func TestCreateWishValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	valid := CreateWishCommand{
		CreatorID:     "creator_1",
		Title:         "Learn Go",
		StakeAmount:   100,
		Deadline:      time.Now().UTC().Add(72 * time.Hour),
		ProofMethod:   entities.ProofMethodRepositoryCommit,
		ImpactPercent: 20,
		Beneficiary:   "charity_1",
	}
	wish, err := f.wishes.CreateWish(ctx, valid)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if wish.Status != entities.WishStatusActive || wish.WishID == "" {
		t.Fatalf("unexpected wish: %+v", wish)
	}

	invalid := []func(*CreateWishCommand){
		func(c *CreateWishCommand) { c.Title = "  " },
		func(c *CreateWishCommand) { c.StakeAmount = 0 },
		func(c *CreateWishCommand) { c.ProofMethod = "telepathy" },
		func(c *CreateWishCommand) { c.Deadline = time.Now().Add(-time.Minute) },
		func(c *CreateWishCommand) { c.ImpactPercent = 101 },
		func(c *CreateWishCommand) { c.Beneficiary = "" },
	}
	for i, mutate := range invalid {
		cmd := valid
		mutate(&cmd)
		if _, err := f.wishes.CreateWish(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidWishInput) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestCancelWishRules(t *testing.T) {
	active := pendingWish("wish_1", time.Now().UTC().Add(time.Hour))
	active.Status = entities.WishStatusActive
	pending := pendingWish("wish_2", time.Now().UTC().Add(time.Hour))
	f := newFixture(active, pending)
	ctx := context.Background()

	if _, err := f.wishes.CancelWish(ctx, CancelWishCommand{WishID: "wish_1", ActorID: "someone"}); !errors.Is(err, domainerrors.ErrCancelForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.wishes.CancelWish(ctx, CancelWishCommand{WishID: "wish_2", ActorID: "creator_1"}); !errors.Is(err, domainerrors.ErrWishNotActive) {
		t.Fatalf("expected pending wish cancel to fail, got %v", err)
	}
	cancelled, err := f.wishes.CancelWish(ctx, CancelWishCommand{WishID: "wish_1", ActorID: "admin", IsAdmin: true})
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if cancelled.Status != entities.WishStatusCancelled || cancelled.ResolvedAt == nil {
		t.Fatalf("unexpected cancelled wish: %+v", cancelled)
	}
}

// interleavingStore runs a competing write just before each of its first
// `times` settlement attempts, the way a concurrent request could commit
// between the tally and the settlement write.
type interleavingStore struct {
	*memory.Store
	mu     sync.Mutex
	times  int
	before func(ctx context.Context, call int)
	calls  int
}

func (s *interleavingStore) SettleWish(
	ctx context.Context,
	wishID string,
	voteCount int,
	to entities.WishStatus,
	at time.Time,
) (entities.Wish, bool, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	if call <= s.times {
		s.before(ctx, call)
	}
	return s.Store.SettleWish(ctx, wishID, voteCount, to, at)
}

func resolverOver(store *memory.Store, wishes ports.WishRepository, treasury *fakeTreasury) ResolutionUseCase {
	return ResolutionUseCase{
		Wishes:   wishes,
		Status:   queries.VerificationStatusUseCase{Wishes: wishes, Clock: store},
		Treasury: treasury,
		Clock:    store,
		IDGen:    store,
	}
}

func seedVotes(t *testing.T, store *memory.Store, wishID string, prefix string, choice entities.VoteChoice, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		vote := entities.Vote{
			VoteID:    fmt.Sprintf("%s_vote_%d", prefix, i),
			WishID:    wishID,
			VoterID:   fmt.Sprintf("%s_%d", prefix, i),
			Choice:    choice,
			Weight:    1,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.InsertVote(context.Background(), vote); err != nil {
			t.Fatalf("seed vote %s failed: %v", vote.VoterID, err)
		}
	}
}

func TestResolveCreditsPledgesCommittedBeforeSettlement(t *testing.T) {
	store := memory.NewStore([]entities.Wish{pendingWish("wish_1", time.Now().UTC().Add(-time.Hour))})
	treasury := &fakeTreasury{}
	wishes := &interleavingStore{Store: store, times: 1, before: func(ctx context.Context, _ int) {
		_, err := store.RecordPledge(ctx, entities.Pledge{
			PledgeID:    "late_pledge",
			WishID:      "wish_1",
			SupporterID: "late_backer",
			Amount:      1000,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("late pledge failed: %v", err)
		}
	}}
	resolver := resolverOver(store, wishes, treasury)

	result, err := resolver.Resolve(context.Background(), "wish_1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.Status != entities.WishStatusFailed || !result.Transitioned {
		t.Fatalf("expected this caller to fail the wish, got %+v", result)
	}
	// (1000 stake + 1500 pledged) * 50%
	if result.ImpactAmount != 1250 || treasury.credited["wish_1"] != 1250 {
		t.Fatalf("expected 1250 credited, got result=%d treasury=%d", result.ImpactAmount, treasury.credited["wish_1"])
	}

	stored, _ := store.GetWish(context.Background(), "wish_1")
	if stored.PledgeTotal != 1500 {
		t.Fatalf("expected frozen pledge total 1500, got %d", stored.PledgeTotal)
	}
	if _, err := store.RecordPledge(context.Background(), entities.Pledge{PledgeID: "after", WishID: "wish_1", SupporterID: "x", Amount: 1}); !errors.Is(err, domainerrors.ErrWishFinalized) {
		t.Fatalf("expected pledges to be frozen after settlement, got %v", err)
	}
}

func TestResolveRetalliesWhenVotesLandBeforeSettlement(t *testing.T) {
	store := memory.NewStore([]entities.Wish{pendingWish("wish_1", time.Now().UTC().Add(-time.Hour))})
	seedVotes(t, store, "wish_1", "yes", entities.VoteChoiceYes, 4)
	seedVotes(t, store, "wish_1", "no", entities.VoteChoiceNo, 5)
	treasury := &fakeTreasury{}
	wishes := &interleavingStore{Store: store, times: 1, before: func(_ context.Context, _ int) {
		seedVotes(t, store, "wish_1", "late_yes", entities.VoteChoiceYes, 2)
	}}
	resolver := resolverOver(store, wishes, treasury)

	result, err := resolver.Resolve(context.Background(), "wish_1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.Status != entities.WishStatusVerified || result.Decision != entities.DecisionApproved || !result.Transitioned {
		t.Fatalf("expected late votes to count toward approval, got %+v", result)
	}
	if result.Evaluation.Yes != 6 || result.Evaluation.No != 5 {
		t.Fatalf("expected 6 yes / 5 no, got %d / %d", result.Evaluation.Yes, result.Evaluation.No)
	}
	if wishes.calls != 2 {
		t.Fatalf("expected one lost settlement and one retry, got %d attempts", wishes.calls)
	}
	if treasury.calls != 0 {
		t.Fatalf("verified wish must not credit treasury")
	}

	status, err := resolver.Status.CheckVerificationStatus(context.Background(), "wish_1")
	if err != nil {
		t.Fatalf("status check failed: %v", err)
	}
	if status.Decision != entities.DecisionApproved || status.Yes != 6 || status.No != 5 {
		t.Fatalf("stored outcome disagrees with tally: %+v", status)
	}
}

func TestResolveGivesUpWhileVotesKeepArriving(t *testing.T) {
	store := memory.NewStore([]entities.Wish{pendingWish("wish_1", time.Now().UTC().Add(-time.Hour))})
	wishes := &interleavingStore{Store: store, times: maxSettleAttempts, before: func(_ context.Context, call int) {
		seedVotes(t, store, "wish_1", fmt.Sprintf("wave_%d", call), entities.VoteChoiceNo, 1)
	}}
	resolver := resolverOver(store, wishes, &fakeTreasury{})

	result, err := resolver.Resolve(context.Background(), "wish_1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if result.Transitioned || result.Status != entities.WishStatusPendingVerification || result.Decision != entities.DecisionPending {
		t.Fatalf("expected wish to stay pending, got %+v", result)
	}
	if wishes.calls != maxSettleAttempts {
		t.Fatalf("expected %d attempts, got %d", maxSettleAttempts, wishes.calls)
	}

	// The next caller sees a quiet ledger and settles.
	wishes.times = 0
	result, err = resolver.Resolve(context.Background(), "wish_1")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if result.Status != entities.WishStatusFailed || !result.Transitioned {
		t.Fatalf("expected settlement once votes stop, got %+v", result)
	}
}
