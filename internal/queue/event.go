// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// TicketCreatedEvent is published when a ticket is successfully created.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type TicketCreatedEvent struct {
	TicketID      string `json:"ticket_id"`
	Title         string `json:"title"`
	CategoryTitle string `json:"category"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	CreatedBy     string `json:"created_by"`
	CreatedAt     string `json:"created_at"`
}
