package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"pvinsight/internal/auth"
	"pvinsight/internal/ingest/pvsyst"
	meteoapp "pvinsight/internal/meteo/application"
	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/observability/metrics"
	prodapp "pvinsight/internal/production/application"
	production "pvinsight/internal/production/domain"
	"pvinsight/internal/reporting"
	"pvinsight/internal/runs"
)

// Routes served by AnalysisHandler.
const (
	PathTMYAnalyze    = "/api/v1/tmy/analyze"
	PathTMYCompare    = "/api/v1/tmy/compare"
	PathHourlyAnalyze = "/api/v1/hourly/analyze"
)

// Report formats selected with ?format=.
const (
	FormatJSON = "json"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var validate = validator.New()

// AnalysisHandler accepts PVsyst uploads and runs the analysis pipelines.
type AnalysisHandler struct {
	meteo      *meteoapp.Service
	production *prodapp.Service
	meteoOpts  meteoapp.Options
	prodOpts   prodapp.Options
	maxUpload  int64
	logger     *log.Logger
	now        func() time.Time
}

// NewAnalysisHandler constructs an AnalysisHandler. The options are the
// defaults that form fields override per request.
func NewAnalysisHandler(meteoSvc *meteoapp.Service, prodSvc *prodapp.Service, meteoOpts meteoapp.Options, prodOpts prodapp.Options, maxUpload int64, logger *log.Logger) (*AnalysisHandler, error) {
	if meteoSvc == nil || prodSvc == nil {
		return nil, errors.New("analysis handler: nil service")
	}
	if maxUpload <= 0 {
		return nil, errors.New("analysis handler: max upload must be positive")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &AnalysisHandler{
		meteo:      meteoSvc,
		production: prodSvc,
		meteoOpts:  meteoOpts,
		prodOpts:   prodOpts,
		maxUpload:  maxUpload,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// ServeHTTP handles POST /api/v1/tmy/analyze, /api/v1/tmy/compare and
// /api/v1/hourly/analyze.
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatJSON
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	switch r.URL.Path {
	case PathTMYAnalyze:
		h.handleTMYAnalyze(w, r, format)
	case PathTMYCompare:
		h.handleTMYCompare(w, r, format)
	case PathHourlyAnalyze:
		h.handleHourly(w, r, format)
	default:
		http.NotFound(w, r)
	}
}

func (h *AnalysisHandler) handleTMYAnalyze(w http.ResponseWriter, r *http.Request, format string) {
	if !oneOf(format, FormatJSON, FormatPDF, FormatXLSX) {
		http.Error(w, "format must be json, pdf or xlsx", http.StatusBadRequest)
		return
	}
	opts, err := h.tmyOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, name, err := readUpload(r, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.meteo.AnalyzeTMY(r.Context(), data, name, opts)
	if err != nil {
		h.writeError(w, r, "tmy analyze", name, err)
		return
	}
	switch format {
	case FormatPDF:
		h.writeReport(w, FormatPDF, runs.TMYReportName(name), func() ([]byte, error) {
			return reporting.TMYPDF(res, h.now())
		})
	case FormatXLSX:
		h.writeReport(w, FormatXLSX, runs.TMYWorkbookName(name), func() ([]byte, error) {
			return reporting.TMYXLSX(res)
		})
	default:
		h.writeJSON(w, newTMYAnalysisDTO(res))
	}
}

func (h *AnalysisHandler) handleTMYCompare(w http.ResponseWriter, r *http.Request, format string) {
	if !oneOf(format, FormatJSON, FormatPDF) {
		http.Error(w, "format must be json or pdf", http.StatusBadRequest)
		return
	}
	opts, err := h.tmyOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data1, name1, err := readUpload(r, "file1")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data2, name2, err := readUpload(r, "file2")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.meteo.CompareTMY(r.Context(), data1, name1, data2, name2, opts)
	if err != nil {
		h.writeError(w, r, "tmy compare", name1+","+name2, err)
		return
	}
	if format == FormatPDF {
		h.writeReport(w, FormatPDF, runs.ComparisonReportName(name1, name2), func() ([]byte, error) {
			return reporting.ComparisonPDF(res, h.now())
		})
		return
	}
	h.writeJSON(w, newTMYComparisonDTO(res))
}

func (h *AnalysisHandler) handleHourly(w http.ResponseWriter, r *http.Request, format string) {
	if !oneOf(format, FormatJSON, FormatPDF, FormatXLSX) {
		http.Error(w, "format must be json, pdf or xlsx", http.StatusBadRequest)
		return
	}
	opts, err := h.hourlyOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, name, err := readUpload(r, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actx, err := h.production.AnalyzeHourly(r.Context(), data, name, opts)
	if err != nil {
		h.writeError(w, r, "hourly analyze", name, err)
		return
	}
	switch format {
	case FormatPDF:
		h.writeReport(w, FormatPDF, runs.HourlyReportName, func() ([]byte, error) {
			return reporting.HourlyPDF(actx, h.now())
		})
	case FormatXLSX:
		h.writeReport(w, FormatXLSX, runs.HourlyWorkbookName, func() ([]byte, error) {
			return reporting.HourlyXLSX(actx)
		})
	default:
		h.writeJSON(w, newHourlyDTO(actx))
	}
}

type tmyParams struct {
	TargetIrradianceUnit string  `validate:"oneof=W/m² kW/m²"`
	EnergyUnit           string  `validate:"oneof=Wh/m² kWh/m²"`
	ThresholdPct         float64 `validate:"gte=0"`
}

// tmyOptions overlays the form fields target_irradiance_unit, energy_unit,
// resample and threshold_pct on the defaults.
func (h *AnalysisHandler) tmyOptions(r *http.Request) (meteoapp.Options, error) {
	opts := h.meteoOpts
	params := tmyParams{
		TargetIrradianceUnit: opts.Normalize.TargetIrradianceUnit,
		EnergyUnit:           opts.Energy.EnergyUnit,
		ThresholdPct:         opts.ThresholdPct,
	}
	if v := r.FormValue("target_irradiance_unit"); v != "" {
		unit, ok := meteo.CanonicalIrradianceUnit(v)
		if !ok {
			return opts, fmt.Errorf("unknown target_irradiance_unit %q", v)
		}
		params.TargetIrradianceUnit = unit
	}
	if v := r.FormValue("energy_unit"); v != "" {
		unit, ok := meteo.CanonicalEnergyUnit(v)
		if !ok {
			return opts, fmt.Errorf("unknown energy_unit %q", v)
		}
		params.EnergyUnit = unit
	}
	if v := r.FormValue("threshold_pct"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("threshold_pct must be a number")
		}
		params.ThresholdPct = parsed
	}
	if v := r.FormValue("resample"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("resample must be true or false")
		}
		opts.Normalize.ResampleHourlyIfSubhourly = parsed
	}
	if err := validate.Struct(params); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	opts.Normalize.TargetIrradianceUnit = params.TargetIrradianceUnit
	opts.Energy.EnergyUnit = params.EnergyUnit
	opts.ThresholdPct = params.ThresholdPct
	return opts, nil
}

type hourlyParams struct {
	ThresholdKW float64 `validate:"gte=0"`
}

func (h *AnalysisHandler) hourlyOptions(r *http.Request) (prodapp.Options, error) {
	opts := h.prodOpts
	params := hourlyParams{ThresholdKW: opts.Analysis.ThresholdKW}
	if v := r.FormValue("threshold_kw"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("threshold_kw must be a number")
		}
		params.ThresholdKW = parsed
	}
	if err := validate.Struct(params); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	opts.Analysis.ThresholdKW = params.ThresholdKW
	return opts, nil
}

func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%s is required", field)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", field, err)
	}
	return data, header.Filename, nil
}

// writeError maps pipeline errors to status codes: unreadable files are 422,
// rejected options 400.
func (h *AnalysisHandler) writeError(w http.ResponseWriter, r *http.Request, op, source string, err error) {
	status := statusFor(err)
	h.logger.Printf("http %s: failed source=%s subject=%s status=%d error=%v", op, source, auth.SubjectFromContext(r.Context()), status, err)
	if status == http.StatusInternalServerError {
		http.Error(w, op+" error", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  err.Error(),
		"reason": pvsyst.Reason(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pvsyst.ErrStructural),
		errors.Is(err, pvsyst.ErrMissingColumn),
		errors.Is(err, pvsyst.ErrLowDataQuality):
		return http.StatusUnprocessableEntity
	case errors.Is(err, meteo.ErrUnknownIrradianceUnit),
		errors.Is(err, meteo.ErrUnknownEnergyUnit),
		errors.Is(err, meteo.ErrNegativeThreshold),
		errors.Is(err, production.ErrNegativeThreshold):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *AnalysisHandler) writeReport(w http.ResponseWriter, format, filename string, build func() ([]byte, error)) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, result, time.Since(start))
	}()

	data, err := build()
	if err != nil {
		result = metrics.ResultError
		h.logger.Printf("http export: failed format=%s file=%s error=%v", format, filename, err)
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	contentType := contentTypePDF
	if format == FormatXLSX {
		contentType = contentTypeXLSX
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AnalysisHandler) writeJSON(w http.ResponseWriter, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("http json: encode failed error=%v", err)
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(body, '\n'))
}

func oneOf(value string, allowed ...string) bool {
	return lo.Contains(allowed, value)
}
