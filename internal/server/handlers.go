package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/blackwell-systems/ga4diag/internal/report"
	"go.uber.org/zap"
)

// maxBodyBytes caps POST bodies. The input object is a handful of short
// fields.
const maxBodyBytes = 64 << 10

var errBadBody = errors.New("invalid request body")

func (s *Server) handleReport(spec report.Spec, csvAllowed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		rep, err := s.pipeline.Run(r.Context(), credential(r), spec, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if csvAllowed && wantsCSV(r) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvFilename(rep)))
			w.WriteHeader(http.StatusOK)
			if err := report.WriteCSV(w, rep); err != nil {
				s.log.Warn("writing csv", zap.Error(err))
			}
			return
		}
		writeJSON(w, http.StatusOK, report.Shape(rep))
	}
}

type propertiesResponse struct {
	Mode         string   `json:"mode"`
	Unrestricted bool     `json:"unrestricted"`
	Properties   []string `json:"properties"`
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	gate := s.pipeline.Gate()
	props, unrestricted, err := gate.Permitted(credential(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if props == nil {
		props = []string{}
	}
	writeJSON(w, http.StatusOK, propertiesResponse{
		Mode:         string(gate.Mode()),
		Unrestricted: unrestricted,
		Properties:   props,
	})
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	f, err := s.pipeline.Fields(r.Context(), credential(r), r.URL.Query().Get("propertyId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// decodeRequest reads the input object from the query string (GET) or the
// JSON body (POST). Query parameters fill any field the body leaves empty.
func decodeRequest(r *http.Request) (report.Request, error) {
	var req report.Request
	if r.Method == http.MethodPost && r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, fmt.Errorf("%w: %v", errBadBody, err)
		}
	}

	q := r.URL.Query()
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(q.Get(key))
		}
	}
	fill(&req.PropertyID, "propertyId")
	fill(&req.StartDate, "startDate")
	fill(&req.EndDate, "endDate")
	fill(&req.PagePathContains, "pagePathContains")
	fill(&req.Dim, "dim")

	if req.Limit == 0 {
		if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return req, fmt.Errorf("%w: %q", report.ErrInvalidLimit, raw)
			}
			req.Limit = n
		}
	}
	return req, nil
}

// credential extracts the caller's token: X-API-Key, then a bearer token,
// then the key query parameter.
func credential(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-API-Key")); v != "" {
		return v
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "bearer "
		if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
			return strings.TrimSpace(auth[len(prefix):])
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("key"))
}

func wantsCSV(r *http.Request) bool {
	q := r.URL.Query()
	if strings.EqualFold(q.Get("format"), "csv") {
		return true
	}
	v, err := strconv.ParseBool(q.Get("csv"))
	return err == nil && v
}

func csvFilename(rep *report.Report) string {
	return fmt.Sprintf("ga4-pages-%s-%s-%s.csv", rep.Meta.PropertyID, rep.Meta.StartDate, rep.Meta.EndDate)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
