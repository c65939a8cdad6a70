package domain

import (
	"context"
	"time"
)

// Detection is a stored result of the mocked disease classifier.
type Detection struct {
	ID         int64
	FarmID     int64
	CropName   string
	Disease    string
	Confidence float64 // percent, 0-100
	Symptoms   []string
	Treatment  []string
	ImagePath  string
	CreatedAt  time.Time
}

// Outbreak groups repeated detections of one disease on one crop at one
// location.
type Outbreak struct {
	Disease     string    `json:"disease"`
	Crop        string    `json:"crop"`
	Location    string    `json:"location"`
	Confidence  float64   `json:"confidence"`
	LastSeen    time.Time `json:"date"`
	Occurrences int       `json:"occurrences"`
}

// DetectionRepository defines data access for disease detections
type DetectionRepository interface {
	// Create inserts the detection. An unknown farm id returns
	// ErrNotFoundOrForbidden.
	Create(ctx context.Context, d *Detection) error
	// ListOutbreaks returns groups seen at least minOccurrences times since
	// the given time, most occurrences first. An empty location matches all;
	// otherwise the farm location must contain it (case-insensitive).
	ListOutbreaks(ctx context.Context, location string, since time.Time, minOccurrences int) ([]Outbreak, error)
}
