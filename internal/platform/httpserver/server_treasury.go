package httpserver

import (
	"net/http"
	"strconv"

	treasuryhttp "wishpact/contexts/impact-governance/impact-treasury/transport/http"
)

func writeTreasuryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, treasuryhttp.ErrorResponse{Code: code, Message: message})
}

func (s *Server) writeTreasuryDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	s.logFailure(r, status, err)
	if status == http.StatusInternalServerError {
		writeTreasuryError(w, status, code, "internal server error")
		return
	}
	writeTreasuryError(w, status, code, err.Error())
}

func (s *Server) handleTreasuryStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Treasury.Handler.GetTreasuryStatsHandler(r.Context())
	if err != nil {
		s.writeTreasuryDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTreasuryCredits(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeTreasuryError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	resp, err := s.modules.Treasury.Handler.ListCreditsHandler(r.Context(), limit)
	if err != nil {
		s.writeTreasuryDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
