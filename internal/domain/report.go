// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunReport is the persisted audit record of one simulation run.
type RunReport struct {
	RunID           uuid.UUID `json:"run_id"`
	Seed            int64     `json:"seed"`
	Orders          int       `json:"orders"`
	EventsGenerated int       `json:"events_generated"`
	Duplicates      int       `json:"duplicates"`
	LateArrivals    int       `json:"late_arrivals"`
	Reordered       int       `json:"reordered"`
	Delivered       int64     `json:"delivered"`
	Failed          int64     `json:"failed"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}
