package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"wishpact/contexts/impact-governance/impact-treasury/adapters/memory"
	"wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/impact-treasury/domain/errors"
	"wishpact/contexts/impact-governance/impact-treasury/ports"
	"wishpact/contracts/apperrors"
)

type fixedCounter struct {
	counts entities.ProposalCounts
}

func (f fixedCounter) CountByStatus(context.Context) (entities.ProposalCounts, error) {
	return f.counts, nil
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

func newService() (Service, *recordingOutbox) {
	store := memory.NewStore()
	outbox := &recordingOutbox{}
	return Service{
		Repo:      store,
		Proposals: fixedCounter{counts: entities.ProposalCounts{Active: 2, Executed: 1, Total: 3}},
		Outbox:    outbox,
		Clock:     store,
		IDGen:     store,
	}, outbox
}

func TestCreditIsIdempotentPerWish(t *testing.T) {
	service, outbox := newService()
	ctx := context.Background()

	if _, err := service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 750, Beneficiary: "charity"}); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	_, err := service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 750, Beneficiary: "charity"})
	if !errors.Is(err, domainerrors.ErrAlreadyCredited) || !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected already credited conflict, got %v", err)
	}

	stats, err := service.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalFunds != 750 || stats.AvailableFunds != 750 || stats.Credits != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Proposals.Total != 3 || stats.Proposals.Active != 2 {
		t.Fatalf("unexpected proposal counts: %+v", stats.Proposals)
	}
	if len(outbox.events) != 1 || outbox.events[0].EventType != "treasury_credited" {
		t.Fatalf("expected one treasury_credited event, got %+v", outbox.events)
	}
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	service, _ := newService()
	for _, amount := range []int64{0, -5} {
		_, err := service.Credit(context.Background(), CreditInput{WishID: "wish_1", Amount: amount})
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
	}
}

func TestAllocateRespectsAvailableFunds(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	if _, err := service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 100}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	_, err := service.Allocate(ctx, AllocateInput{ProposalID: 1, Amount: 150, Beneficiary: "school"})
	if !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := service.Allocate(ctx, AllocateInput{ProposalID: 1, Amount: 60, Beneficiary: "school"}); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	_, err = service.Allocate(ctx, AllocateInput{ProposalID: 1, Amount: 10, Beneficiary: "school"})
	if !errors.Is(err, domainerrors.ErrAlreadyAllocated) {
		t.Fatalf("expected already allocated, got %v", err)
	}

	available, err := service.AvailableFunds(ctx)
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	if available != 40 {
		t.Fatalf("expected 40 available, got %d", available)
	}
}

func TestConcurrentAllocationsNeverOverdraw(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	if _, err := service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 100}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			if _, err := service.Allocate(ctx, AllocateInput{ProposalID: id, Amount: 30, Beneficiary: "b"}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(uint64(i))
	}
	wg.Wait()

	if succeeded != 3 {
		t.Fatalf("expected 3 allocations to fit, got %d", succeeded)
	}
	available, _ := service.AvailableFunds(ctx)
	if available != 10 {
		t.Fatalf("expected 10 left, got %d", available)
	}
}

func TestDuplicateCreditStaysBelowWarn(t *testing.T) {
	service, _ := newService()
	var buf bytes.Buffer
	service.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()

	if _, err := service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 10}); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	buf.Reset()
	for i := 0; i < 3; i++ {
		if _, err := service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 10}); !errors.Is(err, domainerrors.ErrAlreadyCredited) {
			t.Fatalf("expected already credited, got %v", err)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no records at info level, got %s", buf.String())
	}

	service.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, _ = service.Credit(ctx, CreditInput{WishID: "wish_1", Amount: 10})
	if !strings.Contains(buf.String(), "treasury_credit_duplicate") {
		t.Fatalf("expected duplicate credit at debug level, got %s", buf.String())
	}
}
