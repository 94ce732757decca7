package assistant

import (
	"context"
	"sync"
)

type CompleterStub struct {
	mu        sync.Mutex
	Answer    string
	FailWith  error
	Messages  []Message
	MaxTokens int
}

func (c *CompleterStub) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = messages
	c.MaxTokens = maxTokens
	if c.FailWith != nil {
		return "", c.FailWith
	}
	return c.Answer, nil
}
