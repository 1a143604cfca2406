package transport

import "context"

// Sender is the single outbound capability the engine depends on: deliver one
// text message to one recipient. A false result without an error means the
// provider rejected the send; the engine treats it the same as an error.
type Sender interface {
	SendText(ctx context.Context, recipientID, text string) (bool, error)
}
