package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
)

// Payload is the optional structured context a client sends with a message,
// naming the record the user is currently looking at.
type Payload struct {
	Focus *models.GroundedEntity `json:"focus,omitempty"`
}

// ParseContext validates raw. An empty or null payload yields (nil, nil).
func ParseContext(raw json.RawMessage) (*Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	if p.Focus != nil {
		p.Focus.ID = strings.TrimSpace(p.Focus.ID)
		if !p.Focus.Kind.Valid() {
			return nil, fmt.Errorf("%w: unknown focus kind %q", ErrInvalidContext, p.Focus.Kind)
		}
		if p.Focus.ID == "" {
			return nil, fmt.Errorf("%w: focus id is required", ErrInvalidContext)
		}
	}
	return &p, nil
}
