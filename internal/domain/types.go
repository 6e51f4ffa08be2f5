package domain

import "time"

// TimeLayout is the format used for issue timestamps everywhere they are
// persisted or rendered. Timestamps carry no zone marker; they are always
// interpreted in the configured reporting timezone.
const TimeLayout = "2006-01-02 15:04:05"

// Issue is one reported facility problem. PhotoKey is nil when no photo was
// attached; when set it resolves through the photo store.
type Issue struct {
	ID         string    `validate:"required"`
	ReportedAt time.Time `validate:"required"`
	Court      string    `validate:"required"`
	Problem    string    `validate:"required"`
	PhotoKey   *string
	Reporter   string `validate:"required"`
}
