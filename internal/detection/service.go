package detection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/knowledge"
	"github.com/krishisakhi/backend/internal/observability/metrics"
	"github.com/krishisakhi/backend/internal/security"
	"github.com/krishisakhi/backend/internal/security/audit"
)

// Community alerts look back this far and need this many matching reports.
const (
	AlertWindow         = 30 * 24 * time.Hour
	AlertMinOccurrences = 2
)

// Input is a detection request.
type Input struct {
	FarmID    int64
	CropName  string
	ImagePath string
	Language  domain.Language
}

// Result is a stored detection with its advice.
type Result struct {
	ID         int64     `json:"id"`
	FarmID     int64     `json:"farmId"`
	Crop       string    `json:"crop"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	Severity   string    `json:"severity"`
	Symptoms   []string  `json:"symptoms"`
	Treatment  []string  `json:"treatment"`
	Prevention []string  `json:"prevention"`
	ImagePath  string    `json:"imagePath"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Service runs the classifier and records its findings against a farm
type Service struct {
	catalog    *knowledge.Catalog
	classifier Classifier
	detections domain.DetectionRepository
	guard      *security.OwnershipGuard
	auditLog   *audit.Logger
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a detection service. A nil classifier uses MockClassifier.
func NewService(
	catalog *knowledge.Catalog,
	classifier Classifier,
	detections domain.DetectionRepository,
	guard *security.OwnershipGuard,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	if classifier == nil {
		classifier = MockClassifier{}
	}
	return &Service{
		catalog:    catalog,
		classifier: classifier,
		detections: detections,
		guard:      guard,
		auditLog:   auditLog,
		logger:     logger,
		now:        time.Now,
	}
}

// Detect classifies an image of a crop on one of the farmer's farms and
// stores the result. Crops missing from the catalog are classified as the
// default crop.
func (s *Service) Detect(ctx context.Context, farmerID int64, in Input) (*Result, error) {
	if err := s.guard.AuthorizeFarmAccess(ctx, farmerID, in.FarmID); err != nil {
		return nil, err
	}

	imagePath := strings.TrimSpace(in.ImagePath)
	if imagePath == "" {
		return nil, fmt.Errorf("%w: imagePath is required", domain.ErrValidation)
	}

	crop, ok := s.catalog.Crop(in.CropName)
	if !ok {
		crop = s.catalog.DefaultCrop()
	}
	candidate := s.classifier.Classify(crop, imagePath)
	info := s.catalog.DiseaseInfo(candidate.Disease)
	lang := in.Language
	if lang == "" {
		lang = domain.LanguageEnglish
	}

	d := &domain.Detection{
		FarmID:     in.FarmID,
		CropName:   crop.Name,
		Disease:    candidate.Disease,
		Confidence: percent(candidate.Confidence),
		Symptoms:   info.Symptoms.In(lang),
		Treatment:  info.Treatment.In(lang),
		ImagePath:  imagePath,
	}
	if err := s.detections.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("disease detected",
		slog.Int64("farmer_id", farmerID),
		slog.Int64("farm_id", in.FarmID),
		slog.String("crop", crop.Name),
		slog.String("disease", candidate.Disease),
	)
	metrics.ObserveRecordCreated("detection")
	s.auditLog.LogRecordCreated(ctx, farmerID, "detection", d.ID)

	return &Result{
		ID:         d.ID,
		FarmID:     d.FarmID,
		Crop:       d.CropName,
		Disease:    d.Disease,
		Confidence: d.Confidence,
		Severity:   Severity(candidate.Confidence),
		Symptoms:   d.Symptoms,
		Treatment:  d.Treatment,
		Prevention: info.Prevention.In(lang),
		ImagePath:  d.ImagePath,
		CreatedAt:  d.CreatedAt,
	}, nil
}

// CommunityAlerts lists diseases reported repeatedly in the last 30 days,
// optionally narrowed to locations containing location.
func (s *Service) CommunityAlerts(ctx context.Context, location string) ([]domain.Outbreak, error) {
	since := s.now().UTC().Add(-AlertWindow)
	alerts, err := s.detections.ListOutbreaks(ctx, strings.TrimSpace(location), since, AlertMinOccurrences)
	if err != nil {
		return nil, fmt.Errorf("failed to list community alerts: %w", err)
	}
	return alerts, nil
}
