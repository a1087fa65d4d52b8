package httpadapter

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"wishpact/contexts/community-experience/ranking-service/application"
	domainerrors "wishpact/contexts/community-experience/ranking-service/domain/errors"
	"wishpact/contexts/community-experience/ranking-service/ports"
	httptransport "wishpact/contexts/community-experience/ranking-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetLeaderboardHandler(
	ctx context.Context,
	req httptransport.LeaderboardRequest,
	viewerUserID string,
) (httptransport.LeaderboardResponse, error) {
	filter := ports.LeaderboardFilter{
		ViewerUserID: strings.TrimSpace(viewerUserID),
	}
	if strings.TrimSpace(req.Limit) != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(req.Limit))
		if err != nil {
			return httptransport.LeaderboardResponse{}, domainerrors.ErrInvalidLeaderboardQuery
		}
		filter.Limit = limit
	}
	if strings.TrimSpace(req.Offset) != "" {
		offset, err := strconv.Atoi(strings.TrimSpace(req.Offset))
		if err != nil {
			return httptransport.LeaderboardResponse{}, domainerrors.ErrInvalidLeaderboardQuery
		}
		filter.Offset = offset
	}

	board, err := h.Service.GetLeaderboard(ctx, filter)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}

	resp := httptransport.LeaderboardResponse{Status: "success"}
	resp.Data.Leaderboard = make([]httptransport.LeaderboardEntryDTO, 0, len(board.Entries))
	for _, entry := range board.Entries {
		resp.Data.Leaderboard = append(resp.Data.Leaderboard, httptransport.LeaderboardEntryDTO{
			Rank:             entry.Rank,
			UserID:           entry.UserID,
			TotalPledged:     entry.TotalPledged,
			DreamsCreated:    entry.DreamsCreated,
			SuccessfulDreams: entry.SuccessfulDreams,
			SuccessRate:      entry.SuccessRate,
		})
	}
	resp.Data.TotalUsers = board.TotalUsers
	resp.Data.YourRank = board.YourRank
	return resp, nil
}
