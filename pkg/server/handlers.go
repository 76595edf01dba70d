// pkg/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/analytics"
	"github.com/charted-solutions/loanrisk/pkg/export"
	"github.com/charted-solutions/loanrisk/pkg/ingest"
	"github.com/charted-solutions/loanrisk/pkg/model"
	"github.com/charted-solutions/loanrisk/pkg/session"
)

// HealthCheck reports liveness.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// CreateSession registers a new empty session and returns its ID.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	s.writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID})
}

// UploadNSLDS ingests a delinquent-borrower report into the session and
// scores it. A parse failure leaves any previously ingested table in place.
func (s *Server) UploadNSLDS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	table, ok := s.ingestUpload(w, r, func(f fileUpload) (*model.Table, error) {
		return s.ingestor.ReadNSLDS(f.reader, f.filename)
	})
	if !ok {
		return
	}

	s.scorer.ScoreTable(table)
	sess.SetNSLDS(table)

	s.writeIngestResult(w, table)
}

// UploadSIS ingests a student-information extract into the session.
func (s *Server) UploadSIS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	table, ok := s.ingestUpload(w, r, func(f fileUpload) (*model.Table, error) {
		return s.ingestor.ReadSIS(f.reader, f.filename)
	})
	if !ok {
		return
	}

	sess.SetSIS(table)
	s.writeIngestResult(w, table)
}

// warehouseRequest asks for a table pull from a configured warehouse.
type warehouseRequest struct {
	Source string `json:"source"` // "postgres" or "snowflake"
	Table  string `json:"table"`
	Target string `json:"target"` // "nslds" or "sis"
	Limit  int    `json:"limit"`
}

// LoadFromWarehouse pulls a table from a warehouse into the session, going
// through the same canonicalization as an uploaded file.
func (s *Server) LoadFromWarehouse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req warehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Target != "nslds" && req.Target != "sis" {
		s.writeError(w, http.StatusBadRequest, `target must be "nslds" or "sis"`)
		return
	}

	source, err := s.openSource(r.Context(), req.Source, s.cfg)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer source.Close()

	if err := source.Validate(); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	raw, err := source.FetchTable(r.Context(), req.Table, req.Limit)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	target := model.SourceSIS
	if req.Target == "nslds" {
		target = model.SourceNSLDS
	}

	table := s.ingestor.Canonicalize(raw, ingest.HeaderMapFor(target), target)
	if target == model.SourceNSLDS {
		s.scorer.ScoreTable(table)
		sess.SetNSLDS(table)
	} else {
		sess.SetSIS(table)
	}
	s.writeIngestResult(w, table)
}

// MergeTables joins the session's two ingested tables. A join failure
// leaves both ingested tables available for retry with corrected files.
func (s *Server) MergeTables(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	nslds, sis := sess.NSLDS(), sess.SIS()
	if nslds == nil || sis == nil {
		s.writeError(w, http.StatusConflict, "both NSLDS and SIS tables must be ingested before merging")
		return
	}

	merged, err := s.merger.Merge(nslds, sis)
	if err != nil {
		if errors.Is(err, model.ErrNoCommonKey) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// GPA, enrollment status, and academic standing only exist after the
	// join, so the predictive model runs on the merged table.
	s.scorer.ApplyPredictive(merged)

	sess.SetMerged(merged)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"rows": merged.Len()})
}

// Dashboard returns headline metrics and the CDR projection for the
// session's merged table.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	merged := sess.Merged()
	if merged == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"ready": false})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready":   true,
		"metrics": analytics.Metrics(merged),
		"cdr":     analytics.ProjectCDR(merged),
	})
}

// Programs returns per-program aggregates. A merged table with no academic
// program attribute degrades to an empty list, not an error.
func (s *Server) Programs(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	merged := sess.Merged()
	if merged == nil {
		s.writeError(w, http.StatusConflict, "tables must be merged before program analysis")
		return
	}

	aggs, err := s.aggregator.ByProgram(merged)
	if err != nil {
		if errors.Is(err, model.ErrMissingAttribute) {
			s.writeJSON(w, http.StatusOK, map[string]interface{}{
				"programs":  []struct{}{},
				"available": false,
			})
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"programs":  aggs,
		"available": true,
	})
}

// interventionEntry is one high-risk student with recommended actions.
type interventionEntry struct {
	StudentID          string                     `json:"student_id"`
	FirstName          string                     `json:"first_name"`
	LastName           string                     `json:"last_name"`
	Major              string                     `json:"major"`
	RiskScore          float64                    `json:"risk_score"`
	DaysDelinquent     float64                    `json:"days_delinquent"`
	OutstandingBalance float64                    `json:"outstanding_balance"`
	Recommendations    []analytics.Recommendation `json:"recommendations"`
}

// Interventions returns the high-risk queue with per-student
// recommendations, in table order.
func (s *Server) Interventions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	merged := sess.Merged()
	if merged == nil {
		s.writeError(w, http.StatusConflict, "tables must be merged before intervention analysis")
		return
	}

	high := analytics.HighRisk(merged)
	entries := make([]interventionEntry, 0, len(high))
	for _, rec := range high {
		entries = append(entries, interventionEntry{
			StudentID:          rec.StudentID,
			FirstName:          rec.FirstName,
			LastName:           rec.LastName,
			Major:              rec.Major,
			RiskScore:          rec.RiskScore,
			DaysDelinquent:     rec.DaysDelinquent,
			OutstandingBalance: rec.OutstandingBalance,
			Recommendations:    analytics.Recommendations(rec.RiskScore),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"students": entries})
}

// Export streams a derived table as a CSV download: merged, high_risk, or
// programs.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	merged := sess.Merged()
	if merged == nil {
		s.writeError(w, http.StatusConflict, "tables must be merged before export")
		return
	}

	table := chi.URLParam(r, "table")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", table))

	var err error
	switch table {
	case "merged":
		err = export.WriteTable(w, merged)
	case "high_risk":
		err = export.WriteHighRisk(w, merged)
	case "programs":
		aggs, aggErr := s.aggregator.ByProgram(merged)
		if aggErr != nil && !errors.Is(aggErr, model.ErrMissingAttribute) {
			s.writeError(w, http.StatusInternalServerError, aggErr.Error())
			return
		}
		err = export.WritePrograms(w, aggs)
	default:
		w.Header().Del("Content-Disposition")
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown export table: %q", table))
		return
	}

	if err != nil {
		s.logger.Error("Export failed", zap.String("table", table), zap.Error(err))
	}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

type fileUpload struct {
	reader   io.Reader
	filename string
}

// ingestUpload pulls the multipart file out of the request and runs the
// given ingest function, mapping a ParseError to 422.
func (s *Server) ingestUpload(w http.ResponseWriter, r *http.Request, read func(fileUpload) (*model.Table, error)) (*model.Table, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing or unreadable multipart field \"file\"")
		return nil, false
	}
	defer file.Close()

	table, err := read(fileUpload{reader: file, filename: header.Filename})
	if err != nil {
		var parseErr *model.ParseError
		if errors.As(err, &parseErr) {
			s.writeError(w, http.StatusUnprocessableEntity, parseErr.Error())
			return nil, false
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	return table, true
}

func (s *Server) writeIngestResult(w http.ResponseWriter, table *model.Table) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows":      table.Len(),
		"coercions": len(table.Notes),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return nil, false
	}
	return sess, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
