package ports

import (
	"context"

	"wishpact/contexts/community-experience/ranking-service/domain/ranking"
)

// SnapshotReader loads the wish and pledge records the leaderboard is built
// from.
type SnapshotReader interface {
	LoadSnapshot(ctx context.Context) (ranking.Snapshot, error)
}

type Leaderboard struct {
	Entries    []ranking.Entry
	TotalUsers int
	YourRank   int
}

type LeaderboardFilter struct {
	Limit        int
	Offset       int
	ViewerUserID string
}
