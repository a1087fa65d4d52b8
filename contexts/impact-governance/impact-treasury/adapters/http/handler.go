package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"wishpact/contexts/impact-governance/impact-treasury/application"
	httptransport "wishpact/contexts/impact-governance/impact-treasury/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetTreasuryStatsHandler(ctx context.Context) (httptransport.TreasuryStatsResponse, error) {
	stats, err := h.Service.GetStats(ctx)
	if err != nil {
		return httptransport.TreasuryStatsResponse{}, err
	}
	resp := httptransport.TreasuryStatsResponse{Status: "success"}
	resp.Data.TotalFunds = stats.TotalFunds
	resp.Data.AllocatedFunds = stats.AllocatedFunds
	resp.Data.AvailableFunds = stats.AvailableFunds
	resp.Data.Credits = stats.Credits
	resp.Data.Proposals = httptransport.ProposalCountsDTO{
		Active:   stats.Proposals.Active,
		Passed:   stats.Proposals.Passed,
		Failed:   stats.Proposals.Failed,
		Executed: stats.Proposals.Executed,
		Total:    stats.Proposals.Total,
	}
	return resp, nil
}

func (h Handler) ListCreditsHandler(ctx context.Context, limit int) (httptransport.ListCreditsResponse, error) {
	items, err := h.Service.ListCredits(ctx, limit)
	if err != nil {
		return httptransport.ListCreditsResponse{}, err
	}
	resp := httptransport.ListCreditsResponse{
		Status: "success",
		Data:   make([]httptransport.CreditDTO, 0, len(items)),
	}
	for _, item := range items {
		resp.Data = append(resp.Data, httptransport.CreditDTO{
			WishID:      item.WishID,
			Amount:      item.Amount,
			Beneficiary: item.Beneficiary,
			CreditedAt:  item.CreditedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
