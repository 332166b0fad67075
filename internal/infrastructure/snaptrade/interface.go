package snaptrade

import "context"

// API defines the aggregation operations required from the SnapTrade client.
type API interface {
	RegisterAndLinkUser(ctx context.Context, userID, redirectURI, brokerID string) (string, error)
	FetchHoldings(ctx context.Context, userID string) ([]Holding, error)
	HandleCallback(ctx context.Context, userID, code string) (*CallbackResult, error)
}
