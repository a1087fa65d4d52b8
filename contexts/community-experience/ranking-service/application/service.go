package application

import (
	"context"
	"log/slog"
	"strings"

	"wishpact/contexts/community-experience/ranking-service/domain/ranking"
	domainerrors "wishpact/contexts/community-experience/ranking-service/domain/errors"
	"wishpact/contexts/community-experience/ranking-service/ports"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

type Service struct {
	Snapshots ports.SnapshotReader
	Logger    *slog.Logger
}

func (s Service) GetLeaderboard(ctx context.Context, filter ports.LeaderboardFilter) (ports.Leaderboard, error) {
	if filter.Offset < 0 || filter.Limit < 0 {
		return ports.Leaderboard{}, domainerrors.ErrInvalidLeaderboardQuery
	}
	if filter.Limit == 0 {
		filter.Limit = defaultLeaderboardLimit
	}
	if filter.Limit > maxLeaderboardLimit {
		filter.Limit = maxLeaderboardLimit
	}
	filter.ViewerUserID = strings.TrimSpace(filter.ViewerUserID)

	snapshot, err := s.Snapshots.LoadSnapshot(ctx)
	if err != nil {
		resolveLogger(s.Logger).Error("leaderboard snapshot load failed",
			"event", "ranking_snapshot_load_failed",
			"module", "community-experience/ranking-service",
			"layer", "application",
			"error", err.Error(),
		)
		return ports.Leaderboard{}, err
	}
	if len(snapshot.Users) == 0 {
		snapshot.Users = ranking.CollectUsers(snapshot.Wishes, snapshot.Pledges)
	}
	entries := ranking.Aggregate(snapshot)

	board := ports.Leaderboard{TotalUsers: len(entries)}
	if filter.ViewerUserID != "" {
		for _, entry := range entries {
			if entry.UserID == filter.ViewerUserID {
				board.YourRank = entry.Rank
				break
			}
		}
	}
	if filter.Offset < len(entries) {
		end := filter.Offset + filter.Limit
		if end > len(entries) {
			end = len(entries)
		}
		board.Entries = entries[filter.Offset:end]
	} else {
		board.Entries = []ranking.Entry{}
	}

	resolveLogger(s.Logger).Debug("leaderboard served",
		"event", "ranking_leaderboard_served",
		"module", "community-experience/ranking-service",
		"layer", "application",
		"limit", filter.Limit,
		"offset", filter.Offset,
		"total_users", board.TotalUsers,
	)
	return board, nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
