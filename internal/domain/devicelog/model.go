package devicelog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type classifies an entry for display.
type Type string

// Known entry types.
const (
	TypeSystem  Type = "system"
	TypeSuccess Type = "success"
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeDevice  Type = "device"
)

// Provenance tags.
const (
	SourceTile     = "tile"
	SourceExternal = "external"
)

// DefaultDevice labels entries recorded without a device.
const DefaultDevice = "system"

// ErrEmptyMessage is returned when a record request carries no message.
var ErrEmptyMessage = errors.New("message is required")

// Entry is a single line in the tile log.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Source    string    `json:"source"`
	Device    string    `json:"device,omitempty"`
}

// Record is one raw key-value record from an external feed.
type Record map[string]any

// ParseType maps free text onto a known Type, falling back to info.
func ParseType(raw string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(raw))); t {
	case TypeSystem, TypeSuccess, TypeInfo, TypeWarning, TypeError, TypeDevice:
		return t
	default:
		return TypeInfo
	}
}

// RecordRequest is the POST /logs payload.
type RecordRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	Device  string `json:"device" validate:"omitempty,max=120"`
	Type    string `json:"type" validate:"omitempty,max=32"`
}
