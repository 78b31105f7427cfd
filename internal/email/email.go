// Package email delivers notification emails over SMTP.
package email

import "context"

// Sender delivers the notification emails the worker produces.
type Sender interface {
	// SendNewLeadEmail notifies the sales inbox about a freshly scored lead.
	SendNewLeadEmail(ctx context.Context, toEmail string, data NewLeadEmailData) error
}

// NewLeadEmailData carries the fields rendered into the new-lead template.
type NewLeadEmailData struct {
	LeadName         string
	LeadEmail        string
	Source           string
	Score            int
	Category         string
	CapitalFormatted string
}
