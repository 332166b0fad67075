package brokerlink

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrConnectionNotFound = errors.New("broker connection not found")
)

const (
	// DefaultBroker is recorded when the user enters the hosted portal
	// without pre-selecting a brokerage.
	DefaultBroker = "snaptrade"

	// CredentialPending fills the token columns of a connection created
	// before the hosted portal flow finished. It is a sentinel, not a secret.
	CredentialPending = "pending"

	// CredentialManaged fills the token columns of an active connection.
	// The real credentials never reach us; the aggregator holds them.
	CredentialManaged = "managed"
)

// Connection is one row of the broker_connections table. A link attempt
// produces a pending row when the portal URL is issued and a separate active
// row when the callback lands; rows are never transitioned in place.
type Connection struct {
	ID           int64             `json:"id"`
	UserID       string            `json:"userId"`
	Broker       string            `json:"broker"`
	AccountID    string            `json:"accountId,omitempty"`
	AccessToken  string            `json:"-"`
	RefreshToken string            `json:"-"`
	IsActive     bool              `json:"isActive"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type CreateParams struct {
	UserID       string
	Broker       string
	AccountID    string
	AccessToken  string
	RefreshToken string
	IsActive     bool
	Metadata     map[string]string
}
