package firebase

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// TokenInvalidator is called to clear an invalid FCM token from the user
// record. Provided by the caller (e.g. service layer) to avoid coupling to
// the repository.
type TokenInvalidator func(ctx context.Context, token string) error

// Client implements notification.Messenger using Firebase Cloud Messaging
type Client struct {
	msgClient   *messaging.Client
	invalidator TokenInvalidator
}

// NewClient initializes a Firebase app and returns an FCM client.
// invalidator is called when an invalid/unregistered token is detected; may be nil.
func NewClient(ctx context.Context, credentialsFile string, invalidator TokenInvalidator) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{msgClient: msgClient, invalidator: invalidator}, nil
}

// Send sends a push notification to a single device token
func (c *Client) Send(ctx context.Context, token, title, body string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}

	_, err := c.msgClient.Send(ctx, msg)
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			log.Printf("Invalid FCM token (clearing): %s", token)
			c.invalidateToken(ctx, token)
			return fmt.Errorf("invalid token: %w", err)
		}
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	return nil
}

func (c *Client) invalidateToken(ctx context.Context, token string) {
	if c.invalidator == nil {
		return
	}
	if err := c.invalidator(ctx, token); err != nil {
		log.Printf("Failed to clear FCM token %s: %v", token, err)
	}
}
