package devicelog

import (
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/monitoring"
)

// Service fronts the buffer for the HTTP layer.
type Service struct {
	buffer    *Buffer
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	title     string
	recent    int
}

// NewService wires a Service around an existing buffer.
func NewService(buffer *Buffer, logger *zap.Logger, title string, recent int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recent <= 0 {
		recent = 8
	}
	return &Service{
		buffer:    buffer,
		validator: validator.New(),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
		title:     title,
		recent:    recent,
	}
}

// Record validates and stores a locally posted entry.
func (s *Service) Record(req RecordRequest) (Entry, error) {
	req.Message = s.plainText(req.Message)
	req.Device = s.plainText(req.Device)
	if req.Message == "" {
		return Entry{}, ErrEmptyMessage
	}
	if err := s.validator.Struct(req); err != nil {
		return Entry{}, err
	}
	entry := s.buffer.Record(req.Message, req.Device, ParseType(req.Type))
	monitoring.SetBufferSize(s.buffer.Size())
	s.logger.Debug("log recorded",
		zap.String("device", entry.Device),
		zap.String("type", string(entry.Type)),
	)
	return entry, nil
}

// Tile renders the most recent entries.
func (s *Service) Tile() (string, time.Time, error) {
	updated := s.buffer.LastUpdate()
	fragment, err := RenderTile(TileView{
		Title:      s.title,
		Entries:    s.buffer.Snapshot(s.recent),
		LastUpdate: updated,
	})
	return fragment, updated, err
}

// List returns up to limit entries; non-positive limit means all of them.
func (s *Service) List(limit int) ([]Entry, int) {
	total := s.buffer.Size()
	if limit <= 0 || limit > total {
		limit = total
	}
	return s.buffer.Snapshot(limit), total
}

// Clear empties the buffer.
func (s *Service) Clear() int {
	n := s.buffer.Clear()
	monitoring.SetBufferSize(0)
	s.logger.Info("log buffer cleared", zap.Int("removed", n))
	return n
}

// Size reports the buffer length.
func (s *Service) Size() int {
	return s.buffer.Size()
}

// Capacity reports the buffer bound.
func (s *Service) Capacity() int {
	return s.buffer.Capacity()
}

// plainText treats input as HTML and reduces it to text: tags are dropped and
// entities decoded, so "&lt;" arrives as "<". The renderer escapes on output.
func (s *Service) plainText(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}
