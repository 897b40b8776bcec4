package repository

import "github.com/spec-kit/helpdesk-service/internal/domain"

// DefaultTicketCollection is the collection tickets live in unless configured otherwise.
const DefaultTicketCollection = "tickets"

// TicketRepository is the document store for tickets.
type TicketRepository = DocumentStore[domain.Ticket]

// NewTicketRepository binds the ticket collection on backend.
func NewTicketRepository(backend Backend, collection string) TicketRepository {
	if collection == "" {
		collection = DefaultTicketCollection
	}
	return NewCollection[domain.Ticket](backend, collection)
}
