// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/sigma/internal/api/job"
	"github.com/newthinker/sigma/internal/api/response"
	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/render"
	"github.com/newthinker/sigma/internal/storage/report"
	"github.com/newthinker/sigma/internal/strategy/registry"
)

// backtestRequest is the POST /api/v1/backtests payload.
type backtestRequest struct {
	Symbol   string         `json:"symbol"`
	Strategy string         `json:"strategy"`
	Params   map[string]any `json:"params,omitempty"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Interval string         `json:"interval,omitempty"`
	Cost     *float64       `json:"cost,omitempty"`
}

// backtestResult is stored as the job result on success.
type backtestResult struct {
	ReportID string `json:"report_id"`
	Stats    any    `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{"strategies": registry.Names()})
}

func (s *Server) handleCreateBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err := core.WrapErrorf(core.ErrInvalidInput, "decoding request: %w", err)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	start, end, err := parsePeriod(req.Start, req.End)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	// Validate the strategy up front so bad requests fail synchronously.
	strat, err := registry.New(req.Strategy, req.Params)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	interval := req.Interval
	if interval == "" {
		interval = s.defaultInterval
	}
	cost := s.defaultCost
	if req.Cost != nil {
		cost = *req.Cost
	}

	j := s.jobs.Create("backtest")
	s.publishJobGauges()

	go s.runBacktest(j.ID, req.Symbol, strat.Name(), req.Params, start, end, interval, cost)

	response.JSON(w, http.StatusAccepted, j)
}

// runBacktest executes a backtest job in the background.
func (s *Server) runBacktest(jobID, symbol, stratName string, params map[string]any, start, end time.Time, interval string, cost float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.jobs.Update(jobID, func(j *job.Job) { j.Status = job.StatusRunning })
	s.publishJobGauges()

	began := time.Now()

	// Re-construct the strategy so each run gets a fresh instance.
	strat, err := registry.New(stratName, params)
	var rep *backtest.Report
	if err == nil {
		rep, err = s.runner.Run(ctx, strat, symbol, start, end, interval, cost)
	}

	if err != nil {
		s.logger.Error("backtest job failed",
			zap.String("job", jobID),
			zap.String("symbol", symbol),
			zap.String("strategy", stratName),
			zap.Error(err))
		s.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
		if s.metrics != nil {
			s.metrics.RecordBacktest(stratName, "error", time.Since(began).Seconds(), 0)
		}
		s.publishJobGauges()
		return
	}

	reportID, err := s.reports.Save(ctx, rep)
	if err != nil {
		s.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
		s.publishJobGauges()
		return
	}

	s.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = backtestResult{ReportID: reportID, Stats: rep.Stats}
	})
	if s.metrics != nil {
		s.metrics.RecordBacktest(stratName, "success", time.Since(began).Seconds(), rep.Stats.TotalTrades)
	}
	s.publishJobGauges()

	s.logger.Info("backtest job complete",
		zap.String("job", jobID),
		zap.String("report", reportID),
		zap.Float64("total_return", rep.Stats.TotalReturn),
		zap.Int("trades", rep.Stats.TotalTrades))
}

// asCoreError coerces an error into the structured form stored on jobs.
func asCoreError(err error) *core.Error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return core.WrapError(core.ErrStrategyFailed, err)
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, core.WrapErrorf(core.ErrInvalidInput, "invalid start date %q", startStr)
	}
	end, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, core.WrapErrorf(core.ErrInvalidInput, "invalid end date %q", endStr)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, core.WrapErrorf(core.ErrInvalidInput, "end %s not after start %s", endStr, startStr)
	}
	return start, end, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := report.ListFilter{
		Symbol:   q.Get("symbol"),
		Strategy: q.Get("strategy"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	entries, err := s.reports.List(r.Context(), filter)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	// Strip series data from list responses, identities and stats only.
	type item struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Symbol    string    `json:"symbol"`
		Strategy  string    `json:"strategy"`
		Stats     any       `json:"stats"`
	}
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		items = append(items, item{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			Symbol:    e.Report.Symbol,
			Strategy:  e.Report.Strategy,
			Stats:     e.Report.Stats,
		})
	}
	response.JSON(w, http.StatusOK, map[string]any{"reports": items})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	entry, err := s.reports.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

func (s *Server) handleGetReportHTML(w http.ResponseWriter, r *http.Request) {
	entry, err := s.reports.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	html, err := render.HTML(entry.Report)
	if err != nil {
		s.logger.Error("rendering report", zap.String("id", entry.ID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func (s *Server) publishJobGauges() {
	if s.metrics == nil {
		return
	}
	counts := s.jobs.CountByStatus()
	for _, status := range []job.Status{job.StatusPending, job.StatusRunning, job.StatusComplete, job.StatusFailed} {
		s.metrics.SetJobsActive(string(status), counts[status])
	}
}
