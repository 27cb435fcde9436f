package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"heartrisk/form"
	"heartrisk/ml"
	"heartrisk/monitoring"
	"heartrisk/presenter"
	"heartrisk/session"
)

type handlers struct {
	predictor session.Predictor
	modelPath string
	warnings  []string
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// RegisterHandlers registers the page, API and metrics routes of a running server.
func RegisterHandlers(mux *http.ServeMux, deps Dependencies) {
	h := &handlers{
		predictor: deps.Predictor,
		modelPath: deps.ModelPath,
		warnings:  warningLines(deps.Warnings),
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/fields", handleFields)
	mux.HandleFunc("POST /api/predict", h.handlePredictAPI)
	mux.Handle("GET /metrics", deps.Metrics.Handler())
}

func warningLines(warnings []ml.LoadWarning) []string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return lines
}

func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, presenter.FormPage(nil, nil, h.warnings))
}

func (h *handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.metrics.ObservePredictionError("bad_request")
		page := presenter.FormPage(nil, nil, h.warnings).WithError("Could not read the submitted form.")
		h.renderPage(w, r, http.StatusBadRequest, page)
		return
	}

	input := make(map[string]string, len(r.PostForm))
	for name, vs := range r.PostForm {
		if len(vs) > 0 {
			input[name] = vs[0]
		}
	}

	record, err := collectRecord(form.CollectForm(r.PostForm))
	if err != nil {
		h.metrics.ObservePredictionError("validation")
		var ve *form.ValidationError
		errors.As(err, &ve)
		page := presenter.FormPage(input, fieldMessages(ve), h.warnings).WithError("Please correct the highlighted fields.")
		h.renderPage(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	prediction, err := h.predict(r, record)
	if err != nil {
		page := presenter.FormPage(input, nil, h.warnings).WithError(err.Error())
		h.renderPage(w, r, http.StatusInternalServerError, page)
		return
	}

	h.renderPage(w, r, http.StatusOK, presenter.FormPage(input, nil, h.warnings).WithResult(prediction))
}

type predictResponse struct {
	Record          ml.FeatureRecord `json:"record"`
	Probability     float64          `json:"probability"`
	ProbabilityText string           `json:"probability_text"`
	Label           ml.RiskLabel     `json:"label"`
	Risk            string           `json:"risk"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields []form.FieldError `json:"fields,omitempty"`
}

func (h *handlers) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.metrics.ObservePredictionError("bad_request")
		respondJSONStatus(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	record, err := collectRecord(form.CollectJSON(body))
	if err != nil {
		h.metrics.ObservePredictionError("validation")
		resp := errorResponse{Error: err.Error()}
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			resp.Fields = ve.Errors
		}
		respondJSONStatus(w, http.StatusUnprocessableEntity, resp)
		return
	}

	prediction, err := h.predict(r, record)
	if err != nil {
		respondJSONStatus(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	respondJSON(w, predictResponse{
		Record:          record,
		Probability:     prediction.Probability,
		ProbabilityText: presenter.ProbabilityText(prediction.Probability),
		Label:           prediction.Label,
		Risk:            presenter.RiskLine(prediction.Label),
	})
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status":     "ok",
		"model_path": h.modelPath,
		"warnings":   h.warnings,
	})
}

func handleFields(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"features": ml.FeatureNames(),
		"fields":   form.Fields(),
	})
}

func (h *handlers) predict(r *http.Request, record ml.FeatureRecord) (ml.Prediction, error) {
	start := time.Now()
	prediction, err := h.predictor.Predict(r.Context(), record)
	if err != nil {
		h.metrics.ObservePredictionError("prediction")
		h.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Any("record", record),
			zap.Error(err),
		)
		return ml.Prediction{}, err
	}
	h.metrics.ObservePrediction(string(prediction.Label), time.Since(start))
	h.logger.Debug("prediction",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Float64("probability", prediction.Probability),
		zap.String("label", string(prediction.Label)),
	)
	return prediction, nil
}

func (h *handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, page presenter.Page) {
	renderPage(w, r, h.logger, status, page)
}

func renderPage(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, page presenter.Page) {
	var buf bytes.Buffer
	if err := presenter.Render(&buf, page); err != nil {
		logger.Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func collectRecord(values form.Values, err error) (ml.FeatureRecord, error) {
	if err != nil {
		return ml.FeatureRecord{}, err
	}
	return form.Build(values)
}

func fieldMessages(ve *form.ValidationError) map[string]string {
	if ve == nil {
		return nil
	}
	return ve.ByField()
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	respondJSONStatus(w, http.StatusOK, payload)
}

func respondJSONStatus(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RegisterHaltHandlers serves the halt page on every route. The form is never
// rendered; only health and metrics keep their shape.
func RegisterHaltHandlers(mux *http.ServeMux, deps Dependencies) {
	message := deps.HaltErr.Error()
	warnings := warningLines(deps.Warnings)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSONStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "halted",
			"error":    message,
			"warnings": warnings,
		})
	})
	mux.Handle("GET /metrics", deps.Metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			respondJSONStatus(w, http.StatusServiceUnavailable, errorResponse{Error: message})
			return
		}
		renderPage(w, r, deps.Logger, http.StatusServiceUnavailable, presenter.HaltPage(message, warnings))
	})
}
