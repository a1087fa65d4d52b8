package postgresadapter

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"wishpact/contexts/impact-governance/proposal-governor/domain/entities"
	domainerrors "wishpact/contexts/impact-governance/proposal-governor/domain/errors"
	"wishpact/internal/platform/db"

	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "governance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background(), Models()...))
	return NewRepository(database.DB, nil)
}

func createActive(t *testing.T, repo *Repository, now time.Time) entities.Proposal {
	t.Helper()
	proposal, err := repo.CreateProposal(context.Background(), entities.Proposal{
		ProposerID:      "proposer",
		Title:           "Plant trees",
		AmountRequested: 100,
		Beneficiary:     "forest-fund",
		Status:          entities.ProposalStatusActive,
		VotingDeadline:  now.Add(7 * 24 * time.Hour),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
	return proposal
}

func ballot(proposalID uint64, voter string, inFavor bool, at time.Time) entities.Ballot {
	return entities.Ballot{
		BallotID:   fmt.Sprintf("ballot_%d_%s", proposalID, voter),
		ProposalID: proposalID,
		VoterID:    voter,
		InFavor:    inFavor,
		CreatedAt:  at,
	}
}

func TestRecordBallotReachesQuorum(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := createActive(t, repo, now)
	second := createActive(t, repo, now)
	require.Equal(t, first.ProposalID+1, second.ProposalID)

	updated, err := repo.RecordBallot(ctx, ballot(first.ProposalID, "v1", true, now), 3, now)
	require.NoError(t, err)
	require.Equal(t, 1, updated.VotesFor)
	require.Equal(t, entities.ProposalStatusActive, updated.Status)

	_, err = repo.RecordBallot(ctx, ballot(first.ProposalID, "v1", false, now), 3, now)
	require.ErrorIs(t, err, domainerrors.ErrDuplicateBallot)

	_, err = repo.RecordBallot(ctx, ballot(first.ProposalID, "v2", false, now), 3, now)
	require.NoError(t, err)
	updated, err = repo.RecordBallot(ctx, ballot(first.ProposalID, "v3", true, now), 3, now)
	require.NoError(t, err)
	require.Equal(t, 2, updated.VotesFor)
	require.Equal(t, 1, updated.VotesAgainst)
	require.Equal(t, 3, updated.TotalVotes)
	require.True(t, updated.QuorumReached)
	require.Equal(t, entities.ProposalStatusPassed, updated.Status)

	_, err = repo.RecordBallot(ctx, ballot(first.ProposalID, "v4", true, now), 3, now)
	require.ErrorIs(t, err, domainerrors.ErrProposalNotActive)

	_, err = repo.RecordBallot(ctx, ballot(999, "v1", true, now), 3, now)
	require.ErrorIs(t, err, domainerrors.ErrProposalNotFound)
}

func TestRecordBallotTieFails(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	proposal := createActive(t, repo, now)

	_, err := repo.RecordBallot(ctx, ballot(proposal.ProposalID, "v1", true, now), 2, now)
	require.NoError(t, err)
	updated, err := repo.RecordBallot(ctx, ballot(proposal.ProposalID, "v2", false, now), 2, now)
	require.NoError(t, err)
	require.Equal(t, entities.ProposalStatusFailed, updated.Status)
}

func TestMarkExecutedOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	proposal := createActive(t, repo, now)

	executed, err := repo.MarkExecuted(ctx, proposal.ProposalID, "admin", now)
	require.NoError(t, err)
	require.False(t, executed)

	moved, err := repo.TransitionStatus(ctx, proposal.ProposalID, entities.ProposalStatusActive, entities.ProposalStatusPassed, now)
	require.NoError(t, err)
	require.True(t, moved)

	executed, err = repo.MarkExecuted(ctx, proposal.ProposalID, "admin", now)
	require.NoError(t, err)
	require.True(t, executed)
	executed, err = repo.MarkExecuted(ctx, proposal.ProposalID, "admin", now)
	require.NoError(t, err)
	require.False(t, executed)

	stored, err := repo.GetProposal(ctx, proposal.ProposalID)
	require.NoError(t, err)
	require.Equal(t, entities.ProposalStatusExecuted, stored.Status)
	require.NotNil(t, stored.ExecutedAt)
	require.Equal(t, "admin", stored.ExecutedBy)

	_, err = repo.MarkExecuted(ctx, 999, "admin", now)
	require.ErrorIs(t, err, domainerrors.ErrProposalNotFound)
}

func TestExpiredAndCounts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := createActive(t, repo, now.Add(-10*24*time.Hour))
	fresh := createActive(t, repo, now)

	items, err := repo.ListExpiredActive(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, expired.ProposalID, items[0].ProposalID)

	moved, err := repo.TransitionStatus(ctx, expired.ProposalID, entities.ProposalStatusActive, entities.ProposalStatusFailed, now)
	require.NoError(t, err)
	require.True(t, moved)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, entities.StatusCounts{Active: 1, Failed: 1, Total: 2}, counts)

	listed, err := repo.ListProposals(ctx, entities.ProposalStatusActive, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, fresh.ProposalID, listed[0].ProposalID)
}
