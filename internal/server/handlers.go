package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ukaji3/vizparse-go/internal/session"
	"github.com/ukaji3/vizparse-go/pkg/vizparse"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/chart"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/output"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

// ColumnsResponse lists the headers and which of them can be a y axis.
type ColumnsResponse struct {
	Headers []string `json:"headers"`
	Numeric []string `json:"numeric"`
}

// TypeRequest is the body for PUT /api/sessions/{id}/chart/type.
type TypeRequest struct {
	Type string `json:"type"`
}

// ColorRequest is the body for PUT /api/sessions/{id}/chart/color.
type ColorRequest struct {
	Series int    `json:"series"`
	Index  int    `json:"index"`
	Color  string `json:"color"`
}

// AxisRequest is the body for PUT /api/sessions/{id}/chart/axis.
type AxisRequest struct {
	Axis  string `json:"axis"`
	Field string `json:"field"`
}

// handleHealth reports liveness.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

// handleCreate parses an uploaded file into a new session.
// POST /api/sessions
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ds, cfg, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.store.Create(ds, cfg)
	s.logger.Info("session created",
		zap.String("session", sess.ID),
		zap.String("file", ds.Source),
		zap.Int("rows", ds.Len()),
		zap.Bool("chart", cfg != nil))
	s.writeJSON(w, http.StatusCreated, sess)
}

// GET /api/sessions/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DELETE /api/sessions/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReplaceFile swaps the session's dataset for a new upload and
// recomputes its chart from scratch.
// PUT /api/sessions/{id}/file
func (s *Server) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(id); err != nil {
		s.writeError(w, r, err)
		return
	}

	ds, cfg, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.store.Replace(id, ds, cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// GET /api/sessions/{id}/columns
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ColumnsResponse{
		Headers: sess.Dataset.Headers,
		Numeric: chart.NumericHeaders(sess.Dataset),
	})
}

// PUT /api/sessions/{id}/chart/type
func (s *Server) handleSetType(w http.ResponseWriter, r *http.Request) {
	var req TypeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t := models.ChartType(strings.ToLower(strings.TrimSpace(req.Type)))
	s.edit(w, r, func(_ *models.Dataset, cfg *models.ChartConfig) (*models.ChartConfig, error) {
		return chart.SetChartType(cfg, t)
	})
}

// PUT /api/sessions/{id}/chart/color
func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(_ *models.Dataset, cfg *models.ChartConfig) (*models.ChartConfig, error) {
		return chart.SetColor(cfg, req.Series, req.Index, req.Color)
	})
}

// PUT /api/sessions/{id}/chart/axis
func (s *Server) handleSetAxis(w http.ResponseWriter, r *http.Request) {
	var req AxisRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	axis, err := chart.ParseAxis(req.Axis)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.edit(w, r, func(ds *models.Dataset, cfg *models.ChartConfig) (*models.ChartConfig, error) {
		return chart.SetAxis(cfg, ds, axis, req.Field)
	})
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request, fn session.EditFunc) {
	sess, err := s.store.Update(chi.URLParam(r, "id"), fn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Chart)
}

// GET /api/sessions/{id}/chartjs
func (s *Server) handleChartJS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := chart.ToChartJS(sess.Chart)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// handleExport downloads the dataset and its chart as a workbook.
// GET /api/sessions/{id}/export.xlsx
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.ExportXLSX(sess.Dataset, sess.Chart, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(sess.Dataset.Source)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("export write failed", zap.Error(err))
	}
}

// parseUpload reads the multipart "file" field, parses it and infers its
// default chart. The chart is nil when no column is numeric.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*models.Dataset, *models.ChartConfig, error) {
	if r.ContentLength > s.opts.MaxUploadBytes {
		return nil, nil, &http.MaxBytesError{Limit: s.opts.MaxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, mbe
		}
		return nil, nil, fmt.Errorf("%w: multipart field \"file\": %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}

	ctx := r.Context()
	if s.opts.ParseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ParseTimeout)
		defer cancel()
	}

	ds, err := vizparse.Parse(ctx, header.Filename, data, s.opts.Parse)
	if err != nil {
		return nil, nil, err
	}

	cfg, ok := s.opts.Inferrer.Infer(ds)
	if !ok {
		s.logger.Debug("no numeric column, no default chart", zap.String("file", ds.Source))
		cfg = nil
	}
	return ds, cfg, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// statusClientClosedRequest reports a request whose client went away before
// the response was ready. The client never sees it.
const statusClientClosedRequest = 499

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, vizparse.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, vizparse.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chart.ErrNoChart):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, errBadRequest),
		errors.Is(err, chart.ErrInvalidChartType),
		errors.Is(err, chart.ErrIndexOutOfRange),
		errors.Is(err, chart.ErrInvalidColor),
		errors.Is(err, chart.ErrUnknownField),
		errors.Is(err, chart.ErrNonNumericField),
		errors.Is(err, chart.ErrInvalidAxis):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == statusClientClosedRequest {
		s.logger.Debug("client gone",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	}
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		msg = http.StatusText(status)
	}
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := output.WriteJSON(w, v, false); err != nil {
		s.logger.Warn("response write failed", zap.Error(err))
	}
}

// exportName derives the download name from the uploaded file name.
func exportName(source string) string {
	base := path.Base(source)
	if base == "" || base == "." || base == "/" {
		return "chart.xlsx"
	}
	for {
		ext := path.Ext(base)
		if ext == "" || ext == base {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	return base + "-chart.xlsx"
}
