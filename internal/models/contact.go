// internal/models/contact.go
package models

import "time"

// Contact is a decision-maker found by the enrichment provider.
type Contact struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	Name       string    `json:"name"`
	Role       string    `json:"role,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	LinkedIn   string    `json:"linkedin,omitempty"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}
