package noop

import (
	"context"
	"log"

	"mediaflow/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs alerts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendRunFailureEmail(_ context.Context, toEmail string, report port.RunReport) error {
	log.Printf("[NOOP EMAIL] Run failure alert for %s: run=%s asset=%s status=%s error=%s",
		toEmail, report.RunID, report.AssetName, report.Status, report.Error)
	return nil
}
