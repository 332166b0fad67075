package scheduler

import (
	"context"
	"fmt"
	"log"

	"networth/internal/domain/brokerlink"
)

// HoldingsSyncJob implements the Job interface for refreshing one user's
// imported holdings from their linked brokerage accounts.
type HoldingsSyncJob struct {
	userID        string
	importService *brokerlink.ImportService
}

// NewHoldingsSyncJob creates a new holdings sync job for a user
func NewHoldingsSyncJob(userID string, importService *brokerlink.ImportService) *HoldingsSyncJob {
	return &HoldingsSyncJob{
		userID:        userID,
		importService: importService,
	}
}

// Execute runs the holdings sync job
func (j *HoldingsSyncJob) Execute(ctx context.Context) error {
	log.Printf("Starting holdings sync for user %s", j.userID)

	result, err := j.importService.ImportHoldings(ctx, j.userID)
	if err != nil {
		log.Printf("Holdings sync failed for user %s: %v", j.userID, err)
		return fmt.Errorf("sync failed: %w", err)
	}

	if result.Skipped > 0 {
		log.Printf("Holdings sync for user %s completed with skips: Imported=%d, Skipped=%d",
			j.userID, result.Imported, result.Skipped)
		// Return error to mark for retry
		return fmt.Errorf("sync skipped %d holdings", result.Skipped)
	}

	log.Printf("Holdings sync for user %s completed successfully: Imported=%d",
		j.userID, result.Imported)

	return nil
}

// UserID returns the user ID associated with this job
func (j *HoldingsSyncJob) UserID() string {
	return j.userID
}

// Description returns a human-readable description of the job
func (j *HoldingsSyncJob) Description() string {
	return fmt.Sprintf("Holdings sync for user %s", j.userID)
}
