package http

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bizreport/internal/errors"
	"bizreport/internal/report"
	"bizreport/internal/services"
)

// ReportHandler handles report upload and aggregation HTTP requests.
type ReportHandler struct {
	service        *services.ReportService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service *services.ReportService, logger *slog.Logger, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "report_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/periods", h.GetPeriods)
	r.Get("/leaderboard", h.GetLeaderboard)
	r.Get("/topflop", h.GetTopFlop)
	r.Get("/comparison", h.GetComparison)
	r.Get("/asins", h.GetASINs)

	return r
}

// dataResponse is the standard success envelope.
type dataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	// Warnings discloses expected columns that were absent and were
	// zero-filled during aggregation.
	Warnings []string `json:"warnings,omitempty"`
}

func (d *dataResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Upload handles POST /api/reports: a multipart batch of CSV/XLSX report
// files that replaces the current dataset.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("files", "at least one report file is required")))
		return
	}

	uploads := make([]services.UploadFile, 0, len(fileHeaders))
	var openFiles []multipart.File
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ReportLoadError(fh.Filename, err)))
			return
		}
		openFiles = append(openFiles, f)
		uploads = append(uploads, services.UploadFile{
			Name:   fh.Filename,
			Reader: f,
			XLSX:   strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx"),
		})
	}

	summary, err := h.service.Load(ctx, uploads)
	if err != nil {
		h.logger.WarnContext(ctx, "report upload failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ReportLoadError("upload", err)))
		return
	}

	render.Status(r, http.StatusCreated)
	render.Render(w, r, &dataResponse{Success: true, Data: summary})
}

// GetPeriods handles GET /api/reports/periods?segment=normal|b2b&asin=...
func (h *ReportHandler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.parseOptions(w, r)
	if !ok {
		return
	}

	res, err := h.service.PeriodSeries(r.Context(), opts)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.Render(w, r, &dataResponse{Success: true, Data: res.Rows, Warnings: res.MissingColumns})
}

// GetLeaderboard handles GET /api/reports/leaderboard.
func (h *ReportHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.parseOptions(w, r)
	if !ok {
		return
	}

	res, err := h.service.Leaderboard(r.Context(), opts)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.Render(w, r, &dataResponse{Success: true, Data: res.Rows, Warnings: res.MissingColumns})
}

// GetTopFlop handles GET /api/reports/topflop.
func (h *ReportHandler) GetTopFlop(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.parseOptions(w, r)
	if !ok {
		return
	}

	res, err := h.service.TopFlop(r.Context(), opts)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.Render(w, r, &dataResponse{Success: true, Data: res, Warnings: res.MissingColumns})
}

// GetComparison handles GET /api/reports/comparison.
func (h *ReportHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	opts, ok := h.parseOptions(w, r)
	if !ok {
		return
	}

	res, err := h.service.Comparison(r.Context(), opts)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.Render(w, r, &dataResponse{Success: true, Data: res, Warnings: res.MissingColumns})
}

// GetASINs handles GET /api/reports/asins.
func (h *ReportHandler) GetASINs(w http.ResponseWriter, r *http.Request) {
	asins, err := h.service.ASINs()
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.Render(w, r, &dataResponse{Success: true, Data: asins})
}

// parseOptions validates the segment and asin query parameters.
func (h *ReportHandler) parseOptions(w http.ResponseWriter, r *http.Request) (services.AggregateOptions, bool) {
	opts := services.AggregateOptions{Segment: report.SegmentNormal}

	switch strings.ToLower(r.URL.Query().Get("segment")) {
	case "", "normal":
	case "b2b":
		opts.Segment = report.SegmentB2B
	default:
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("segment", "must be 'normal' or 'b2b'")))
		return opts, false
	}

	for _, a := range r.URL.Query()["asin"] {
		if a = strings.TrimSpace(a); a != "" {
			opts.ASINs = append(opts.ASINs, a)
		}
	}

	return opts, true
}

func (h *ReportHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoReports) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrNoReportsLoaded))
		return
	}
	h.logger.ErrorContext(r.Context(), "aggregation failed", slog.String("error", err.Error()))
	render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
}
