package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"paradox-quiz-service/internal/app"
	"paradox-quiz-service/internal/domain"
	"paradox-quiz-service/internal/engine"
)

// APIHandler exposes the scoring and configuration engine as JSON endpoints.
type APIHandler struct {
	service  *app.StudyService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAPIHandler(service *app.StudyService, log zerolog.Logger) *APIHandler {
	return &APIHandler{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("component", "api_handler").Logger(),
	}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/points", h.points)
	mux.HandleFunc("POST /api/quiz-config", h.quizConfig)
	mux.HandleFunc("POST /api/paradoxes/filter", h.filter)
	mux.HandleFunc("GET /api/paradoxes/facets", h.facets)
	mux.HandleFunc("GET /api/milestones/next", h.nextMilestone)
}

type pointsRequest struct {
	QuizType domain.QuizType `json:"quizType" validate:"required"`
	Score    int             `json:"score" validate:"min=0,max=100"`
	Streak   int             `json:"streak" validate:"min=0"`
}

func (h *APIHandler) points(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := engine.CalculatePoints(req.QuizType, req.Score, req.Streak)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) quizConfig(w http.ResponseWriter, r *http.Request) {
	var req app.QuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg, err := h.service.BuildQuiz(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *APIHandler) filter(w http.ResponseWriter, r *http.Request) {
	var params engine.FilterParams
	if !h.decode(w, r, &params) {
		return
	}
	items, err := h.service.FilterParadoxes(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *APIHandler) facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (h *APIHandler) nextMilestone(w http.ResponseWriter, r *http.Request) {
	total, err := strconv.Atoi(r.URL.Query().Get("total"))
	if err != nil || total < 0 {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "total must be a non-negative integer"})
		return
	}
	writeJSON(w, http.StatusOK, engine.NextMilestone(total))
}

// decode reads a JSON body and validates it; on failure the response is already written.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid json body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
			return false
		}
	}
	return true
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownQuizType),
		errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidCompletion),
		errors.Is(err, domain.ErrInvalidQuizRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrParadoxNotFound),
		errors.Is(err, domain.ErrBoardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCatalogUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
