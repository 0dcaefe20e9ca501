package model

import "time"

// Ticket status values. These are wire values, not internal codes.
const (
	StatusTodo         = "Todo"
	StatusInProgress   = "In Progress"
	StatusRequirements = "In Requirements"
)

// Ticket priority values.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// ValidStatus reports whether s is one of the accepted ticket statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusRequirements:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the accepted ticket priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Ticket is a helpdesk ticket owned by a single user. CategoryID references
// an existing category belonging to the same owner; the reference is
// validated at write time so orphaned tickets cannot be created.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CategoryID  string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
