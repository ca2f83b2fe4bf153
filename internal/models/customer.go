package models

import "time"

type Customer struct {
	ID              int64        `json:"id" db:"id"`
	Name            string       `json:"name" db:"name"`
	Type            CustomerType `json:"type" db:"type"`
	ComplianceScore int          `json:"complianceScore" db:"compliance_score"`
	Country         *string      `json:"country,omitempty" db:"country"`
	ContactEmail    *string      `json:"contactEmail,omitempty" db:"contact_email"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
}
