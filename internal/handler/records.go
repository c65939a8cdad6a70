package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordHandler serves farms, activities and the dashboard
type RecordHandler struct {
	records *service.RecordService
	logger  *slog.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(records *service.RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{records: records, logger: logger}
}

// FarmRequest is the body of POST /api/farms
type FarmRequest struct {
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	LandSize       float64  `json:"landSize"`
	SoilType       string   `json:"soilType"`
	IrrigationType string   `json:"irrigationType"`
	CropTypes      []string `json:"cropTypes"`
}

// FarmResponse is the API view of a farm
type FarmResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	LandSize       float64   `json:"landSize"`
	SoilType       string    `json:"soilType"`
	IrrigationType string    `json:"irrigationType"`
	CropTypes      []string  `json:"cropTypes"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ActivityRequest is the body of POST /api/activities
type ActivityRequest struct {
	FarmID       int64    `json:"farmId"`
	ActivityType string   `json:"activityType"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	CropName     *string  `json:"cropName,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// ActivityResponse is the API view of an activity
type ActivityResponse struct {
	ID           int64     `json:"id"`
	FarmID       int64     `json:"farmId"`
	FarmName     string    `json:"farmName"`
	ActivityType string    `json:"activityType"`
	Description  string    `json:"description"`
	Date         string    `json:"date"`
	CropName     *string   `json:"cropName"`
	Quantity     *float64  `json:"quantity"`
	Cost         *float64  `json:"cost"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
}

func farmResponse(f *domain.Farm) FarmResponse {
	crops := f.CropTypes
	if crops == nil {
		crops = []string{}
	}
	return FarmResponse{
		ID:             f.ID,
		Name:           f.Name,
		Location:       f.Location,
		LandSize:       f.LandSize,
		SoilType:       f.SoilType,
		IrrigationType: f.IrrigationType,
		CropTypes:      crops,
		CreatedAt:      f.CreatedAt,
	}
}

func activityResponse(a *domain.ActivityWithFarmName) ActivityResponse {
	return ActivityResponse{
		ID:           a.ID,
		FarmID:       a.FarmID,
		FarmName:     a.FarmName,
		ActivityType: a.ActivityType,
		Description:  a.Description,
		Date:         a.Date.Format(domain.DateLayout),
		CropName:     a.CropName,
		Quantity:     a.Quantity,
		Cost:         a.Cost,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt,
	}
}

// CreateFarm handles POST /api/farms
func (h *RecordHandler) CreateFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	var req FarmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	farm, err := h.records.CreateFarm(r.Context(), id, service.FarmInput{
		Name:           req.Name,
		Location:       req.Location,
		LandSize:       req.LandSize,
		SoilType:       req.SoilType,
		IrrigationType: req.IrrigationType,
		CropTypes:      req.CropTypes,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"farmId": farm.ID})
}

// ListFarms handles GET /api/farms
func (h *RecordHandler) ListFarms(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	farms, err := h.records.ListFarms(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	out := make([]FarmResponse, 0, len(farms))
	for _, f := range farms {
		out = append(out, farmResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateActivity handles POST /api/activities
func (h *RecordHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	var req ActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activity, err := h.records.CreateActivity(r.Context(), id, service.ActivityInput{
		FarmID:       req.FarmID,
		ActivityType: req.ActivityType,
		Description:  req.Description,
		Date:         req.Date,
		CropName:     req.CropName,
		Quantity:     req.Quantity,
		Cost:         req.Cost,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"activityId": activity.ID})
}

// farmFilter reads the optional ?farmId= filter.
func farmFilter(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("farmId")
	if raw == "" {
		return nil, true
	}
	id, ok := int64Param(w, raw, "farmId")
	if !ok {
		return nil, false
	}
	return &id, true
}

// ListActivities handles GET /api/activities
func (h *RecordHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}
	farm, ok := farmFilter(w, r)
	if !ok {
		return
	}

	list, err := h.records.ListActivities(r.Context(), id, farm)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	out := make([]ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, activityResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetActivity handles GET /api/activities/{id}
func (h *RecordHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}
	activityID, ok := int64Param(w, r.PathValue("id"), "activity id")
	if !ok {
		return
	}

	a, err := h.records.GetActivity(r.Context(), id, activityID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, activityResponse(a))
}

// ExportActivities handles GET /api/activities/export
func (h *RecordHandler) ExportActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}
	farm, ok := farmFilter(w, r)
	if !ok {
		return
	}

	data, err := h.records.ExportActivities(r.Context(), id, farm)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	filename := fmt.Sprintf("activities-%s.xlsx", time.Now().UTC().Format(domain.DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("export write aborted", slog.String("error", err.Error()))
	}
}

// Dashboard handles GET /api/dashboard
func (h *RecordHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := farmerID(w, r)
	if !ok {
		return
	}

	d, err := h.records.Dashboard(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
