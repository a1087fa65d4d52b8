package postgresadapter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"wishpact/contexts/impact-governance/impact-treasury/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/impact-treasury/domain/errors"
	"wishpact/internal/platform/db"

	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "treasury.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background(), Models()...))
	return NewRepository(database.DB, nil)
}

func TestRepositoryLedger(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	account, err := repo.GetAccount(ctx)
	require.NoError(t, err)
	require.Zero(t, account.TotalFunds)

	require.ErrorIs(t, repo.RecordAllocation(ctx, entities.Allocation{ProposalID: 1, Amount: 10, AllocatedAt: now}), domainerrors.ErrInsufficientFunds)

	require.NoError(t, repo.RecordCredit(ctx, entities.Credit{WishID: "wish_1", Amount: 300, CreditedAt: now}))
	require.NoError(t, repo.RecordCredit(ctx, entities.Credit{WishID: "wish_2", Amount: 200, CreditedAt: now.Add(time.Second)}))
	require.ErrorIs(t, repo.RecordCredit(ctx, entities.Credit{WishID: "wish_1", Amount: 300, CreditedAt: now}), domainerrors.ErrAlreadyCredited)

	require.NoError(t, repo.RecordAllocation(ctx, entities.Allocation{ProposalID: 1, Amount: 450, Beneficiary: "school", AllocatedAt: now}))
	require.ErrorIs(t, repo.RecordAllocation(ctx, entities.Allocation{ProposalID: 1, Amount: 10, AllocatedAt: now}), domainerrors.ErrAlreadyAllocated)
	require.ErrorIs(t, repo.RecordAllocation(ctx, entities.Allocation{ProposalID: 2, Amount: 51, AllocatedAt: now}), domainerrors.ErrInsufficientFunds)

	account, err = repo.GetAccount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 500, account.TotalFunds)
	require.EqualValues(t, 450, account.AllocatedFunds)
	require.EqualValues(t, 50, account.AvailableFunds())
	require.Equal(t, 2, account.CreditCount)

	credits, err := repo.ListCredits(ctx, 10)
	require.NoError(t, err)
	require.Len(t, credits, 2)
	require.Equal(t, "wish_2", credits[0].WishID)
}
