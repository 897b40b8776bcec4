package domain

import "time"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	SubCategoryID      string          `json:"subCategoryId,omitempty"`
	Priority           TicketPriority  `json:"priority"`
	Status             TicketStatus    `json:"status"`
	Requester          RequesterInfo   `json:"requester"`
	AssignedAgentID    string          `json:"assignedAgentId,omitempty"`
	AssignedAgentName  string          `json:"assignedAgentName,omitempty"`
	AssignedAgents     []string        `json:"assignedAgents,omitempty"`
	EscalationLevel    EscalationLevel `json:"escalationLevel"`
	Location           Location        `json:"location"`
	AdditionalContacts []Contact       `json:"additionalContacts,omitempty"`
	Tags               []string        `json:"tags,omitempty"`
	Messages           []TicketMessage `json:"messages,omitempty"`
	Attachments        []Attachment    `json:"attachments,omitempty"`
	WorkLogs           []WorkLogEntry  `json:"workLogs,omitempty"`
	ResolutionNotes    string          `json:"resolutionNotes,omitempty"`
	ResolutionSteps    []string        `json:"resolutionSteps,omitempty"`
	ResolvedAt         *time.Time      `json:"resolvedAt,omitempty"`
	UpdateHistory      []AuditEntry    `json:"updateHistory"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// DocumentID satisfies store.Document.
func (t Ticket) DocumentID() string {
	return t.ID
}

// IsAssigned reports whether a primary agent is set.
func (t *Ticket) IsAssigned() bool {
	return t.AssignedAgentID != ""
}

// LastHistoryEntry returns the most recent audit entry, if any.
func (t *Ticket) LastHistoryEntry() (AuditEntry, bool) {
	if len(t.UpdateHistory) == 0 {
		return AuditEntry{}, false
	}
	return t.UpdateHistory[len(t.UpdateHistory)-1], true
}

// RequesterInfo is the requesting user as it looked when the ticket was filed.
type RequesterInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Location describes where the problem is; all fields optional.
type Location struct {
	Building string `json:"building,omitempty"`
	Floor    string `json:"floor,omitempty"`
	Room     string `json:"room,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
}

// IsZero reports whether no location field is set.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Contact is an extra person to keep in the loop on a ticket.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Key identifies a contact for set comparison: email when present, else name.
func (c Contact) Key() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Name
}

// Label is the human readable form used in audit descriptions.
func (c Contact) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}
