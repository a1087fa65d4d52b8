package httpserver

import (
	"net/http"

	verificationhttp "wishpact/contexts/wish-verification/verification-service/transport/http"
	"wishpact/contracts/apperrors"
)

func writeVerificationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, verificationhttp.ErrorResponse{Code: code, Message: message})
}

func (s *Server) writeVerificationDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	s.logFailure(r, status, err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, verificationhttp.ErrorResponse{
		Code:    code,
		Message: message,
		Field:   apperrors.FieldOf(err),
	})
}

func (s *Server) handleCreateWish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeVerificationError)
	if !ok {
		return
	}
	var req verificationhttp.CreateWishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVerificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Verification.Handler.CreateWishHandler(r.Context(), userID, req)
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRecordPledge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeVerificationError)
	if !ok {
		return
	}
	var req verificationhttp.RecordPledgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVerificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Verification.Handler.RecordPledgeHandler(r.Context(), userID, r.PathValue("wish_id"), req)
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeVerificationError)
	if !ok {
		return
	}
	var req verificationhttp.SubmitProofRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVerificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Verification.Handler.SubmitProofHandler(r.Context(), userID, r.PathValue("wish_id"), req)
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeVerificationError)
	if !ok {
		return
	}
	var req verificationhttp.CastVoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeVerificationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Verification.Handler.CastVoteHandler(r.Context(), userID, r.PathValue("wish_id"), req)
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Verification.Handler.CheckVerificationStatusHandler(r.Context(), r.PathValue("wish_id"))
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r, writeVerificationError); !ok {
		return
	}
	resp, err := s.modules.Verification.Handler.ResolveHandler(r.Context(), r.PathValue("wish_id"))
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelWish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeVerificationError)
	if !ok {
		return
	}
	resp, err := s.modules.Verification.Handler.CancelWishHandler(r.Context(), userID, isAdmin(r), r.PathValue("wish_id"))
	if err != nil {
		s.writeVerificationDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
