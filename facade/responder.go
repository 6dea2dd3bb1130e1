package facade

import (
	"context"
	"fmt"
	"net/http"

	"github.com/broadcastkit/conform/client"
)

// Responder delivers questions to whatever is configured to answer them.
type Responder interface {
	// Deliver presents a question. It returns once the responder has
	// accepted the question, not once it is answered.
	Deliver(ctx context.Context, env Envelope) error

	// Clear tells the responder to discard any presented question.
	Clear(ctx context.Context) error
}

// HTTPResponder posts question envelopes to a remote responder endpoint,
// either an interactive web front end or an automated agent.
type HTTPResponder struct {
	url    string
	client *client.Client
}

var _ Responder = (*HTTPResponder)(nil)

func NewHTTPResponder(url string, c *client.Client) *HTTPResponder {
	return &HTTPResponder{url: url, client: c}
}

func (r *HTTPResponder) Deliver(ctx context.Context, env Envelope) error {
	resp, err := r.client.Do(ctx, http.MethodPost, r.url, env)
	if err != nil {
		return fmt.Errorf("posting question to responder: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("responder rejected question: status %d", resp.StatusCode)
	}
	return nil
}

func (r *HTTPResponder) Clear(ctx context.Context) error {
	// The wire contract uses the capitalized string literal.
	resp, err := r.client.Do(ctx, http.MethodPost, r.url, map[string]string{"clear": "True"})
	if err != nil {
		return fmt.Errorf("posting clear to responder: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("responder rejected clear: status %d", resp.StatusCode)
	}
	return nil
}
