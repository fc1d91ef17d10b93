package botx

import "context"

// Handler handles a single chat message.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Request is an incoming chat message.
type Request struct {
	MessageID string
	Chat      Chat
	Text      string
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// Response is a message to send in reply.
type Response struct {
	ReplyToMessageID string
	ChatID           string
	Text             string
}

// NotFound is a default handler for unknown commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
