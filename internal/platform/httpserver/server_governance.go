package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	governancehttp "wishpact/contexts/impact-governance/proposal-governor/transport/http"
)

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{Code: code, Message: message})
}

func (s *Server) writeGovernanceDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	s.logFailure(r, status, err)
	if status == http.StatusInternalServerError {
		writeGovernanceError(w, status, code, "internal server error")
		return
	}
	writeGovernanceError(w, status, code, err.Error())
}

// proposalID parses the path id or writes 400.
func proposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(r.PathValue("proposal_id")), 10, 64)
	if err != nil || id == 0 {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeGovernanceError)
	if !ok {
		return
	}
	var req governancehttp.CreateProposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Governor.Handler.CreateProposalHandler(r.Context(), userID, req)
	if err != nil {
		s.writeGovernanceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeGovernanceError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	resp, err := s.modules.Governor.Handler.ListProposalsHandler(r.Context(), query.Get("status"), limit)
	if err != nil {
		s.writeGovernanceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Governor.Handler.GetProposalHandler(r.Context(), id)
	if err != nil {
		s.writeGovernanceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeGovernanceError)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	var req governancehttp.VoteProposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Governor.Handler.VoteProposalHandler(r.Context(), userID, id, req)
	if err != nil {
		s.writeGovernanceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeGovernanceError)
	if !ok {
		return
	}
	id, ok := proposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Governor.Handler.ExecuteProposalHandler(r.Context(), userID, id)
	if err != nil {
		s.writeGovernanceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
