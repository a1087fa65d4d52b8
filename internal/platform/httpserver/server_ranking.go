package httpserver

import (
	"net/http"
	"strings"

	rankinghttp "wishpact/contexts/community-experience/ranking-service/transport/http"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	req := rankinghttp.LeaderboardRequest{
		Limit:  r.URL.Query().Get("limit"),
		Offset: r.URL.Query().Get("offset"),
	}
	resp, err := s.modules.Ranking.Handler.GetLeaderboardHandler(
		r.Context(),
		req,
		strings.TrimSpace(r.Header.Get(userHeader)),
	)
	if err != nil {
		status, code := errorStatus(err)
		s.logFailure(r, status, err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
		writeJSON(w, status, rankinghttp.ErrorResponse{Code: code, Message: message})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
