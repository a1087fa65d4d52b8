package application

import (
	"context"
	"errors"
	"testing"

	"wishpact/contexts/community-experience/ranking-service/adapters/memory"
	"wishpact/contexts/community-experience/ranking-service/domain/ranking"
	domainerrors "wishpact/contexts/community-experience/ranking-service/domain/errors"
	"wishpact/contexts/community-experience/ranking-service/ports"
)

type failingReader struct{}

func (failingReader) LoadSnapshot(context.Context) (ranking.Snapshot, error) {
	return ranking.Snapshot{}, errors.New("database unavailable")
}

func seededService() Service {
	store := memory.NewStore()
	store.PutWish(ranking.WishRecord{WishID: "w1", CreatorID: "carol", Status: ranking.SuccessStatus})
	store.PutWish(ranking.WishRecord{WishID: "w2", CreatorID: "carol", Status: "failed"})
	store.AddPledge(ranking.PledgeRecord{SupporterID: "bob", Amount: 300_000_000})
	store.AddPledge(ranking.PledgeRecord{SupporterID: "bob", Amount: 200_000_000})
	store.AddPledge(ranking.PledgeRecord{SupporterID: "alice", Amount: 100_000_000})
	return Service{Snapshots: store}
}

func TestGetLeaderboardOrdersAndReportsViewerRank(t *testing.T) {
	board, err := seededService().GetLeaderboard(context.Background(), ports.LeaderboardFilter{ViewerUserID: "alice"})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if board.TotalUsers != 3 || len(board.Entries) != 3 {
		t.Fatalf("expected three users, got %+v", board)
	}
	if board.Entries[0].UserID != "bob" || board.Entries[0].TotalPledged != 500_000_000 {
		t.Fatalf("expected bob first, got %+v", board.Entries[0])
	}
	if board.Entries[1].UserID != "alice" || board.Entries[1].Rank != 2 {
		t.Fatalf("expected alice second, got %+v", board.Entries[1])
	}
	if board.Entries[2].UserID != "carol" || board.Entries[2].SuccessRate != 50 {
		t.Fatalf("expected carol last with 50%% success, got %+v", board.Entries[2])
	}
	if board.YourRank != 2 {
		t.Fatalf("expected viewer rank 2, got %d", board.YourRank)
	}
}

func TestGetLeaderboardPaging(t *testing.T) {
	service := seededService()
	board, err := service.GetLeaderboard(context.Background(), ports.LeaderboardFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].Rank != 2 {
		t.Fatalf("expected the second entry only, got %+v", board.Entries)
	}

	board, err = service.GetLeaderboard(context.Background(), ports.LeaderboardFilter{Offset: 10})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 0 || board.TotalUsers != 3 {
		t.Fatalf("expected empty page, got %+v", board)
	}

	if _, err := service.GetLeaderboard(context.Background(), ports.LeaderboardFilter{Limit: -1}); !errors.Is(err, domainerrors.ErrInvalidLeaderboardQuery) {
		t.Fatalf("expected invalid query, got %v", err)
	}
}

func TestGetLeaderboardPropagatesReaderFailure(t *testing.T) {
	_, err := Service{Snapshots: failingReader{}}.GetLeaderboard(context.Background(), ports.LeaderboardFilter{})
	if err == nil {
		t.Fatalf("expected reader failure")
	}
}
