package amqppub

import (
	"time"

	"fooddispatch/internal/core/domain/model/order"
)

// Message is the JSON body of a published StatusChanged event. From is
// omitted for the creation event.
type Message struct {
	OrderID   string    `json:"order_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	DriverID  string    `json:"driver_id,omitempty"`
	At        time.Time `json:"at"`
}

func messageOf(e order.StatusChanged) Message {
	m := Message{
		OrderID:   e.OrderID.String(),
		To:        e.To.String(),
		Action:    e.Action.String(),
		ActorID:   e.ActorID.String(),
		ActorRole: e.ActorRole.String(),
		At:        e.At.UTC(),
	}
	if e.From != order.Unknown {
		m.From = e.From.String()
	}
	if e.DriverID != nil {
		m.DriverID = e.DriverID.String()
	}
	return m
}
