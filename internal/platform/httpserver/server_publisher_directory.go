package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	directoryerrors "admesh/contexts/protocol-core/publisher-directory/domain/errors"
	directoryhttp "admesh/contexts/protocol-core/publisher-directory/transport/http"
)

// handleRegisterPublisher godoc
// @Summary Register the calling address as a publisher
// @Tags publisher-directory
// @Router /v1/publishers [post]
func (s *Server) handleRegisterPublisher(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeDirectoryError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}

	var req directoryhttp.RegisterPublisherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.directory.Handler.RegisterPublisherHandler(r.Context(), caller, req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleScheduleRateUpdate(w http.ResponseWriter, r *http.Request) {
	caller := resolveCaller(r)
	if caller == "" {
		writeDirectoryError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return
	}

	var req directoryhttp.ScheduleRateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.directory.Handler.ScheduleRateUpdateHandler(r.Context(), caller, req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPublishers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.directory.Handler.ListPublishersHandler(r.Context())
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPublisher(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))

	resp, err := s.directory.Handler.GetPublisherHandler(r.Context(), address)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDirectoryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directoryerrors.ErrInvalidPublisherInput):
		writeDirectoryError(w, http.StatusBadRequest, "invalid_publisher_input", err.Error())
	case errors.Is(err, directoryerrors.ErrPublisherAlreadyExists):
		writeDirectoryError(w, http.StatusConflict, "publisher_already_exists", err.Error())
	case errors.Is(err, directoryerrors.ErrPublisherNotFound):
		writeDirectoryError(w, http.StatusNotFound, "publisher_not_found", err.Error())
	case errors.Is(err, directoryerrors.ErrRateUpdateAlreadyQueued):
		writeDirectoryError(w, http.StatusConflict, "rate_update_already_queued", err.Error())
	default:
		writeDirectoryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDirectoryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, directoryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
