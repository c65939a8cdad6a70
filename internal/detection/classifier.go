package detection

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/krishisakhi/backend/internal/knowledge"
)

// Severity levels reported with a detection.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// Classifier picks a disease for a crop image.
type Classifier interface {
	Classify(crop knowledge.Crop, imagePath string) knowledge.Candidate
}

// MockClassifier stands in for image inference. The same crop and image path
// always yield the same candidate.
type MockClassifier struct{}

// Classify hashes the crop name and image path to select one of the crop's
// candidates.
func (MockClassifier) Classify(crop knowledge.Crop, imagePath string) knowledge.Candidate {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(crop.Name)))
	h.Write([]byte{0})
	h.Write([]byte(imagePath))
	return crop.Detections[h.Sum32()%uint32(len(crop.Detections))]
}

// Severity grades a confidence in [0, 1].
func Severity(confidence float64) string {
	switch {
	case confidence > 0.8:
		return SeverityHigh
	case confidence > 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// percent converts a [0, 1] confidence to a percentage with two decimals.
func percent(confidence float64) float64 {
	return math.Round(confidence*10000) / 100
}
