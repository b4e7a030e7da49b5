package synthesis

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenCounter estimates prompt sizes with the cl100k_base encoding.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var (
	counterOnce sync.Once
	counter     *TokenCounter
)

// DefaultTokenCounter returns the shared counter. If the encoding cannot be
// loaded the counter falls back to four characters per token.
func DefaultTokenCounter() *TokenCounter {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			counter = &TokenCounter{}
			return
		}
		counter = &TokenCounter{encoding: enc}
	})
	return counter
}

// Count returns the estimated number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.encoding == nil {
		return (len(text) + 3) / 4
	}
	return len(c.encoding.Encode(text, nil, nil))
}
