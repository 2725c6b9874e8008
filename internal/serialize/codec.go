// SPDX-License-Identifier: Apache-2.0

// Package serialize turns event records into wire bytes for a named
// destination subject. Callers treat the returned bytes as opaque.
package serialize

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/orderup/order-producer/internal/domain"
)

// Codec encodes event records as JSON for subjects registered with a
// schema version. Encoding fails with ErrSchemaMismatch when the record
// does not conform to the registered subject.
type Codec struct {
	mu       sync.RWMutex
	subjects map[string]int
}

func NewCodec() *Codec {
	return &Codec{
		subjects: make(map[string]int),
	}
}

// Register binds a subject name to the schema version it accepts.
func (c *Codec) Register(subject string, version int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects[subject] = version
}

// Encode serializes one event record for the given subject.
func (c *Codec) Encode(rec domain.EventRecord, subject string) ([]byte, error) {
	c.mu.RLock()
	version, ok := c.subjects[subject]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: subject %q not registered", domain.ErrSchemaMismatch, subject)
	}
	if rec.SchemaVersion != version {
		return nil, fmt.Errorf("%w: subject %q expects schema version %d, record has %d",
			domain.ErrSchemaMismatch, subject, version, rec.SchemaVersion)
	}
	if rec.Payload == nil {
		return nil, fmt.Errorf("%w: record %s has no payload", domain.ErrSchemaMismatch, rec.EventID)
	}
	if rec.Payload.EventType() != rec.EventType {
		return nil, fmt.Errorf("%w: payload tag %s does not match event_type %s",
			domain.ErrSchemaMismatch, rec.Payload.EventType(), rec.EventType)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", rec.EventID, err)
	}
	return data, nil
}
