package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/krishisakhi/backend/internal/detection"
	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/knowledge"
	"github.com/krishisakhi/backend/internal/service"
	"github.com/krishisakhi/backend/internal/weather"
)

// DetectionHandler serves disease detection and community alerts
type DetectionHandler struct {
	detections *detection.Service
	logger     *slog.Logger
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(detections *detection.Service, logger *slog.Logger) *DetectionHandler {
	return &DetectionHandler{detections: detections, logger: logger}
}

// DetectRequest is the body of POST /api/detections
type DetectRequest struct {
	FarmID    int64  `json:"farmId"`
	CropName  string `json:"cropName"`
	ImagePath string `json:"imagePath"`
	Language  string `json:"language"`
}

// Detect handles POST /api/detections
func (h *DetectionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	var req DetectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lang, ok := domain.ParseLanguage(req.Language)
	if !ok {
		lang = domain.LanguageEnglish
	}

	result, err := h.detections.Detect(r.Context(), id, detection.Input{
		FarmID:    req.FarmID,
		CropName:  req.CropName,
		ImagePath: req.ImagePath,
		Language:  lang,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// CommunityAlerts handles GET /api/community/alerts
func (h *DetectionHandler) CommunityAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.detections.CommunityAlerts(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Outbreak{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// WeatherHandler serves forecasts and farming advisories
type WeatherHandler struct {
	weather *weather.Service
	auth    *service.AuthService
	logger  *slog.Logger
}

// NewWeatherHandler creates a new weather handler. The caller's profile
// supplies the location and language when the query omits them.
func NewWeatherHandler(weather *weather.Service, auth *service.AuthService, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{weather: weather, auth: auth, logger: logger}
}

// Forecast handles GET /api/weather
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	location := strings.TrimSpace(r.URL.Query().Get("location"))
	lang := domain.LanguageEnglish
	if location == "" || r.URL.Query().Get("language") == "" {
		farmer, err := h.auth.Profile(r.Context(), id)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		if location == "" {
			location = farmer.Location
		}
		lang = farmer.Language
	}

	report, err := h.weather.Forecast(r.Context(), location, languageParam(r, lang))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// KnowledgeHandler serves the public crop, disease and scheme articles
type KnowledgeHandler struct {
	catalog *knowledge.Catalog
	logger  *slog.Logger
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(catalog *knowledge.Catalog, logger *slog.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{catalog: catalog, logger: logger}
}

// Articles handles GET /api/knowledge/{kind}
func (h *KnowledgeHandler) Articles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.catalog.Articles(r.PathValue("kind"), languageParam(r, domain.LanguageEnglish))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}
