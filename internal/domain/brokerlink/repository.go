package brokerlink

import "context"

// Repository defines the interface for broker connection data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create inserts a new connection row
	Create(ctx context.Context, params CreateParams) (*Connection, error)

	// ListByUserID retrieves all connection rows for a specific user
	ListByUserID(ctx context.Context, userID string) ([]*Connection, error)

	// ListUserIDsWithActiveConnections retrieves the distinct user ids that
	// have at least one active connection, for the background sync job
	ListUserIDsWithActiveConnections(ctx context.Context) ([]string, error)
}
