package application

import (
	"context"
	"fmt"
	"testing"

	"wishpact/contexts/impact-governance/impact-treasury/adapters/memory"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Positive amounts are credits, negative amounts are allocation requests.
func TestAvailableFundsNeverNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("available funds equal credits minus allocations and stay non-negative", prop.ForAll(
		func(operations []int64) bool {
			store := memory.NewStore()
			service := Service{Repo: store, Clock: store}
			ctx := context.Background()

			var credited, allocated int64
			for i, amount := range operations {
				switch {
				case amount > 0:
					if _, err := service.Credit(ctx, CreditInput{WishID: fmt.Sprintf("wish_%d", i), Amount: amount}); err != nil {
						return false
					}
					credited += amount
				case amount < 0:
					if _, err := service.Allocate(ctx, AllocateInput{ProposalID: uint64(i + 1), Amount: -amount, Beneficiary: "b"}); err == nil {
						allocated += -amount
					}
				}
				available, err := service.AvailableFunds(ctx)
				if err != nil || available < 0 || available != credited-allocated {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}
