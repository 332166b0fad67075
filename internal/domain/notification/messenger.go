package notification

import "context"

// Messenger delivers one push message to a device token. Implemented by the
// FCM client in the infrastructure layer.
type Messenger interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}
