// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SchemaVersion is the version stamped on every emitted event envelope.
const SchemaVersion = 1

type EventType string

const (
	EventOrderCreated     EventType = "ORDER_CREATED"
	EventOrderItemAdded   EventType = "ORDER_ITEM_ADDED"
	EventOrderItemRemoved EventType = "ORDER_ITEM_REMOVED"
	EventOrderUpdated     EventType = "ORDER_UPDATED"
	EventOrderConfirmed   EventType = "ORDER_CONFIRMED"
	EventOrderCancelled   EventType = "ORDER_CANCELLED"
	EventOrderCompleted   EventType = "ORDER_COMPLETED"
)

// Payload is the closed set of per-event-type payload variants. The
// concrete type is selected by the envelope's event_type tag.
type Payload interface {
	EventType() EventType
}

// EventRecord is the envelope produced once per emission. Records are
// immutable after construction; the injector only copies them.
type EventRecord struct {
	EventID       uuid.UUID `json:"event_id"`
	EventType     EventType `json:"event_type"`
	EventTS       int64     `json:"event_ts"` // milliseconds since epoch
	OrderID       string    `json:"order_id"`
	Payload       Payload   `json:"payload"`
	SchemaVersion int       `json:"schema_version"`
}

type OrderCreatedPayload struct {
	CustomerID    string      `json:"customer_id"`
	RestaurantID  string      `json:"restaurant_id"`
	InitialStatus OrderStatus `json:"initial_status"`
}

type OrderItemAddedPayload struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type OrderItemRemovedPayload struct {
	ItemID string `json:"item_id"`
}

type OrderUpdatedPayload struct {
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

type OrderConfirmedPayload struct {
	ConfirmedBy         string `json:"confirmed_by"`
	EstimatedDeliveryTS int64  `json:"estimated_delivery_ts"`
}

type OrderCancelledPayload struct {
	CancelledBy string  `json:"cancelled_by"`
	Reason      *string `json:"reason"`
}

type OrderCompletedPayload struct {
	CompletedTS int64   `json:"completed_ts"`
	TotalAmount float64 `json:"total_amount"`
}

func (OrderCreatedPayload) EventType() EventType     { return EventOrderCreated }
func (OrderItemAddedPayload) EventType() EventType   { return EventOrderItemAdded }
func (OrderItemRemovedPayload) EventType() EventType { return EventOrderItemRemoved }
func (OrderUpdatedPayload) EventType() EventType     { return EventOrderUpdated }
func (OrderConfirmedPayload) EventType() EventType   { return EventOrderConfirmed }
func (OrderCancelledPayload) EventType() EventType   { return EventOrderCancelled }
func (OrderCompletedPayload) EventType() EventType   { return EventOrderCompleted }

// rawEventRecord is used for two-stage unmarshalling: first decode the
// envelope, then decode the payload based on event_type.
type rawEventRecord struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     EventType       `json:"event_type"`
	EventTS       int64           `json:"event_ts"`
	OrderID       string          `json:"order_id"`
	Payload       json.RawMessage `json:"payload"`
	SchemaVersion int             `json:"schema_version"`
}

// DecodeEventRecord unmarshals an event envelope with the payload type
// selected by the event_type tag.
func DecodeEventRecord(data []byte) (EventRecord, error) {
	var raw rawEventRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return EventRecord{}, fmt.Errorf("decode event envelope: %w", err)
	}

	rec := EventRecord{
		EventID:       raw.EventID,
		EventType:     raw.EventType,
		EventTS:       raw.EventTS,
		OrderID:       raw.OrderID,
		SchemaVersion: raw.SchemaVersion,
	}

	payload, err := decodePayload(raw.EventType, raw.Payload)
	if err != nil {
		return EventRecord{}, err
	}
	rec.Payload = payload

	return rec, nil
}

func decodePayload(eventType EventType, data json.RawMessage) (Payload, error) {
	var payload Payload
	switch eventType {
	case EventOrderCreated:
		var p OrderCreatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	case EventOrderItemAdded:
		var p OrderItemAddedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	case EventOrderItemRemoved:
		var p OrderItemRemovedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	case EventOrderUpdated:
		var p OrderUpdatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	case EventOrderConfirmed:
		var p OrderConfirmedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	case EventOrderCancelled:
		var p OrderCancelledPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	case EventOrderCompleted:
		var p OrderCompletedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		payload = p
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	return payload, nil
}
