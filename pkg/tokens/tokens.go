// Package tokens counts tokens so conversation history can be trimmed
// to a model's context window before dispatch.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/frankx-ai/frankx/pkg/llms"
)

// Counter counts tokens for a specific model.
type Counter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

var (
	encodingCache = make(map[string]*tiktoken.Tiktoken)
	cacheMu       sync.RWMutex
)

// NewCounter returns a counter for the given model. Models tiktoken
// does not know fall back to the cl100k_base encoding, which is close
// enough for budget trimming.
func NewCounter(model string) (*Counter, error) {
	cacheMu.RLock()
	cached, exists := encodingCache[model]
	cacheMu.RUnlock()
	if exists {
		return &Counter{encoding: cached, model: model}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	cacheMu.Lock()
	encodingCache[model] = encoding
	cacheMu.Unlock()

	return &Counter{encoding: encoding, model: model}, nil
}

// Count returns the token count for text.
func (c *Counter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// CountMessages counts tokens in a message list, including the
// per-message framing overhead of the chat format.
func (c *Counter) CountMessages(messages []llms.Message) int {
	const tokensPerMessage = 3

	total := 0
	for _, msg := range messages {
		total += tokensPerMessage
		total += len(c.encoding.Encode(msg.Role, nil, nil))
		total += len(c.encoding.Encode(msg.Content, nil, nil))
	}
	// reply priming
	total += 3
	return total
}

// FitWithinLimit returns the suffix of messages that fits within
// maxTokens, keeping the most recent messages.
func (c *Counter) FitWithinLimit(messages []llms.Message, maxTokens int) []llms.Message {
	if len(messages) == 0 {
		return messages
	}

	fitted := []llms.Message{}
	current := 3

	for i := len(messages) - 1; i >= 0; i-- {
		msgTokens := c.CountMessages([]llms.Message{messages[i]})
		if current+msgTokens > maxTokens {
			break
		}
		fitted = append([]llms.Message{messages[i]}, fitted...)
		current += msgTokens
	}
	return fitted
}
