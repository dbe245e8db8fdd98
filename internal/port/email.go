package port

import "context"

// RunReport is the payload for deployment outcome notifications.
type RunReport struct {
	RunID      string
	AssetName  string
	Status     string
	Error      string
	DurationMS int64
}

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	SendRunFailureEmail(ctx context.Context, toEmail string, report RunReport) error
}
