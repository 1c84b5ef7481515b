// Package api exposes the emission ledger over HTTP with JSON bodies,
// mirroring the import/query surface of the service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rshade/carbonledger/internal/compute"
	"github.com/rshade/carbonledger/internal/ingest"
	"github.com/rshade/carbonledger/internal/logging"
	"github.com/rshade/carbonledger/internal/metrics"
	"github.com/rshade/carbonledger/internal/query"
)

// maxBodyBytes caps request bodies; all accepted bodies are tiny JSON
// documents.
const maxBodyBytes = 1 << 20

// Server wires the ingestion pipeline and query engine to HTTP.
type Server struct {
	computer *compute.Computer
	engine   *query.Engine
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewServer creates the HTTP surface over the given collaborators.
func NewServer(
	computer *compute.Computer,
	engine *query.Engine,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	return &Server{
		computer: computer,
		engine:   engine,
		metrics:  m,
		logger:   logging.ComponentLogger(logger, "api"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/factors/import", s.handleFactorsImport)
	mux.HandleFunc("POST /v1/records/import", s.handleRecordsImport)
	mux.HandleFunc("POST /v1/emissions", s.handleEmissions)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

type importRequest struct {
	Filepath string `json:"filepath"`
}

type importResponse struct {
	Success bool `json:"success"`
}

type emissionsRequest struct {
	// IsSorted is tri-state: absent preserves insertion order, true
	// sorts descending, false ascending.
	IsSorted *bool `json:"is_sorted"`
	Grouped  *bool `json:"grouped"`
	Scope    *int  `json:"filter_scope"`
	Category *int  `json:"filter_category"`
}

type emissionPayload struct {
	Activity string  `json:"activity"`
	CO2e     float64 `json:"co2e"`
	Scope    int     `json:"scope"`
	Category *int    `json:"category"`
}

type groupedEmissionPayload struct {
	Activity  string  `json:"activity"`
	TotalCO2e float64 `json:"total_co2e"`
	Count     int     `json:"count"`
	Scope     int     `json:"scope"`
	Category  *int    `json:"category"`
}

type emissionsResponse struct {
	Emissions    []any   `json:"emissions"`
	EmissionsSum float64 `json:"emissions_sum"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleFactorsImport(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.computer.RegisterFactorRows)
}

func (s *Server) handleRecordsImport(w http.ResponseWriter, r *http.Request) {
	s.handleImport(w, r, s.computer.IngestRows)
}

func (s *Server) handleImport(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, rows []ingest.Row) compute.BatchResult,
) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Filepath == "" {
		writeError(w, http.StatusBadRequest, "filepath is required")
		return
	}

	rows, err := ingest.ReadRowsFile(req.Filepath)
	if err != nil {
		// The input source itself is unusable: fatal before any row.
		s.logger.Warn().Str("filepath", req.Filepath).Err(err).Msg("import source rejected")
		writeError(w, http.StatusBadRequest, fmt.Sprintf("could not read csv: %v", err))
		return
	}

	ctx := s.logger.WithContext(r.Context())
	result := run(ctx, rows)
	writeJSON(w, http.StatusOK, importResponse{Success: result.Success})
}

func (s *Server) handleEmissions(w http.ResponseWriter, r *http.Request) {
	var req emissionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := query.Params{
		Scope:    req.Scope,
		Category: req.Category,
	}
	if req.IsSorted != nil {
		if *req.IsSorted {
			params.Sort = query.SortDescending
		} else {
			params.Sort = query.SortAscending
		}
	}
	if req.Grouped != nil {
		params.Grouped = *req.Grouped
	}

	ctx := r.Context()
	result, err := s.engine.Emissions(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("emissions query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	sum, err := s.engine.TotalEmissions(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("emissions sum failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, emissionsResponse{
		Emissions:    payloadFor(result),
		EmissionsSum: sum,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func payloadFor(result query.Result) []any {
	if result.Grouped {
		payload := make([]any, 0, len(result.Groups))
		for _, g := range result.Groups {
			payload = append(payload, groupedEmissionPayload{
				Activity:  g.Activity,
				TotalCO2e: g.TotalCO2e,
				Count:     g.Count,
				Scope:     int(g.Scope),
				Category:  g.Category,
			})
		}
		return payload
	}

	payload := make([]any, 0, len(result.Emissions))
	for _, e := range result.Emissions {
		payload = append(payload, emissionPayload{
			Activity: e.Activity,
			CO2e:     e.CO2e,
			Scope:    int(e.Scope),
			Category: e.Category,
		})
	}
	return payload
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%s is not a valid %s", typeErr.Field, typeErr.Type)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
