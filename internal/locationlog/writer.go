// Package locationlog appends location records to a JSON log kept in a
// versioned remote blob store. Every append is a fetch, an in-memory append and
// a write conditioned on the version observed at fetch time, so concurrent
// writers surface as KindConflict instead of lost updates.
package locationlog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"geo-tracker/internal/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// DefaultMessageFormat is used for the commit message of each write. It is
// rendered with the log path and the timestamp of the last appended record.
const DefaultMessageFormat = "Update %s with new geolocation data at %s"

// Options configures a Writer.
type Options struct {
	Path          string
	MessageFormat string
}

// Writer appends records to the log stored at a fixed path.
type Writer struct {
	store         Store
	path          string
	messageFormat string
}

// NewWriter creates a writer for the log at opts.Path in store.
func NewWriter(store Store, opts Options) *Writer {
	format := opts.MessageFormat
	if format == "" {
		format = DefaultMessageFormat
	}
	return &Writer{
		store:         store,
		path:          opts.Path,
		messageFormat: format,
	}
}

// Path returns the logical path of the log.
func (w *Writer) Path() string {
	return w.path
}

// Append adds record to the end of the log.
func (w *Writer) Append(ctx context.Context, record models.LocationRecord) error {
	return w.AppendAll(ctx, record)
}

// AppendAll adds records to the end of the log, in order, with a single write.
func (w *Writer) AppendAll(ctx context.Context, records ...models.LocationRecord) error {
	if len(records) == 0 {
		return NewError(KindInvalidInput, "no records to append", nil)
	}
	for i, record := range records {
		if err := Validate(record); err != nil {
			return NewError(KindInvalidInput, fmt.Sprintf("record %d: %v", i, err), nil)
		}
	}

	logger := zerolog.Ctx(ctx).With().Str("path", w.path).Logger()

	var (
		current []json.RawMessage
		version string
	)

	blob, err := w.store.Get(ctx, w.path)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Debug().Msg("log not found, starting a new one")
	case err != nil:
		return upstreamError("failed to fetch log", err)
	case blob == nil:
		return NewError(KindUpstreamUnavailable, "store returned no blob", nil)
	default:
		current, err = decodeEntries(blob.Content)
		if err != nil {
			return NewError(KindCorruptLog, "stored log cannot be decoded", err)
		}
		version = blob.Version
	}

	added, err := marshalEntries(records)
	if err != nil {
		return NewError(KindInvalidInput, "records cannot be encoded", err)
	}

	// Stored entries are written back untouched, including fields this package does not model.
	updated := make([]json.RawMessage, 0, len(current)+len(added))
	updated = append(updated, current...)
	updated = append(updated, added...)
	content := encodeEntries(updated)

	message := fmt.Sprintf(w.messageFormat, w.path, records[len(records)-1].Timestamp)
	err = w.store.PutIfMatch(ctx, w.path, content, version, message)
	switch {
	case errors.Is(err, ErrVersionMismatch):
		return NewError(KindConflict, "log was modified concurrently", err)
	case err != nil:
		return upstreamError("failed to write log", err)
	}

	logger.Debug().Int("appended", len(records)).Int("length", len(updated)).Msg("log updated")
	return nil
}

// Validate checks that record has usable coordinates and an RFC3339 timestamp.
func Validate(record models.LocationRecord) error {
	if math.IsNaN(record.Latitude) || math.IsInf(record.Latitude, 0) {
		return fmt.Errorf("latitude is not a finite number")
	}
	if math.IsNaN(record.Longitude) || math.IsInf(record.Longitude, 0) {
		return fmt.Errorf("longitude is not a finite number")
	}
	if record.Latitude < -90 || record.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", record.Latitude)
	}
	if record.Longitude < -180 || record.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", record.Longitude)
	}
	if record.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := time.Parse(time.RFC3339, record.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", record.Timestamp, err)
	}
	return nil
}
