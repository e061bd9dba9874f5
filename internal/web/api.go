package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/logger"
)

type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Success  bool           `json:"success"`
	Data     []database.Row `json:"data"`
	Columns  []string       `json:"columns"`
	RowCount int            `json:"row_count"`
}

type tablesResponse struct {
	Success bool             `json:"success"`
	Tables  []database.Table `json:"tables"`
}

type structureResponse struct {
	Success   bool              `json:"success"`
	Structure []database.Column `json:"structure"`
}

type targetsResponse struct {
	Success bool         `json:"success"`
	Current string       `json:"current"`
	Targets []targetView `json:"targets"`
}

// handleExecuteQuery runs ad-hoc SQL. Driver errors are returned verbatim.
func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, apiError{Error: "Invalid request body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusOK, apiError{Error: "Query cannot be empty"})
		return
	}

	sess := s.sessions.load(r)
	b, err := s.open(sess)
	if err != nil {
		s.requestLog(r).Error("Opening target failed", logger.Ctx{"err": err})
		writeJSON(w, http.StatusOK, apiError{Error: database.ConnectionFailedMessage})
		return
	}
	defer b.Close()

	result, err := b.ExecuteQuery(r.Context(), query)
	if err != nil {
		writeJSON(w, http.StatusOK, apiError{Error: queryErrorMessage(err)})
		return
	}

	rows := result.Rows
	if rows == nil {
		rows = []database.Row{}
	}
	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Success:  true,
		Data:     rows,
		Columns:  columns,
		RowCount: len(rows),
	})
}

func queryErrorMessage(err error) string {
	var qErr *database.ErrQuery
	if errors.As(err, &qErr) {
		return qErr.Message()
	}
	var connErr *database.ErrConnection
	if errors.As(err, &connErr) {
		return database.ConnectionFailedMessage
	}
	return err.Error()
}

func (s *Server) handleAPITables(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	b, err := s.open(sess)
	if err != nil {
		writeJSON(w, http.StatusOK, apiError{Error: "Failed to fetch tables"})
		return
	}
	defer b.Close()

	tables, err := b.ListTables(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, apiError{Error: "Failed to fetch tables"})
		return
	}
	writeJSON(w, http.StatusOK, tablesResponse{Success: true, Tables: tables})
}

func (s *Server) handleAPIStructure(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	table := database.Table{Schema: queryDefault(r.URL.Query(), "schema", defaultSchema), Name: tableParam(r)}

	b, err := s.open(sess)
	if err != nil {
		writeJSON(w, http.StatusOK, apiError{Error: "Failed to fetch table structure"})
		return
	}
	defer b.Close()

	columns, err := b.DescribeTable(r.Context(), table)
	if err != nil {
		writeJSON(w, http.StatusOK, apiError{Error: "Failed to fetch table structure"})
		return
	}
	writeJSON(w, http.StatusOK, structureResponse{Success: true, Structure: columns})
}

func (s *Server) handleAPITargets(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.load(r)
	targets := make([]targetView, 0, len(s.svc.Targets()))
	for _, t := range s.svc.Targets() {
		targets = append(targets, targetView{Name: t.Name, Display: t.DisplayString()})
	}
	writeJSON(w, http.StatusOK, targetsResponse{
		Success: true,
		Current: s.currentTarget(sess),
		Targets: targets,
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth always responds 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleReady responds 200 when the default target accepts connections and 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Open("")
	if err == nil {
		defer b.Close()
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		err = b.Connect(ctx)
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ready"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
