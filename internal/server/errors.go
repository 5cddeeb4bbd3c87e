package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/blackwell-systems/ga4diag/internal/access"
	"github.com/blackwell-systems/ga4diag/internal/report"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error codes carried in the JSON error body.
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeBadRequest      = "bad_request"
	CodeUpstreamFailure = "upstream_failure"
	CodeInternal        = "internal"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Allowed []string `json:"allowed,omitempty"`
}

// classify maps err to an HTTP status and body.
func classify(err error) (int, errorResponse) {
	var fe *access.ForbiddenError
	var ue *report.UpstreamError
	switch {
	case errors.Is(err, access.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: "missing or invalid credential", Code: CodeUnauthorized}
	case errors.As(err, &fe):
		allowed := fe.Allowed
		if allowed == nil {
			allowed = []string{}
		}
		return http.StatusForbidden, errorResponse{Error: err.Error(), Code: CodeForbidden, Allowed: allowed}
	case errors.Is(err, errBadBody), report.IsBadRequest(err):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: CodeBadRequest}
	case errors.As(err, &ue):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		return status, errorResponse{Error: err.Error(), Code: CodeUpstreamFailure}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: CodeInternal}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeJSON(w, status, body)
}
