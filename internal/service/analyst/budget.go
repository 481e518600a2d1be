package analyst

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func encoder() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		tk, _ = tiktoken.GetEncoding("cl100k_base")
	})
	return tk
}

// fitTokens cuts text down to at most maxTokens tokens. When the encoding is
// unavailable it falls back to roughly four bytes per token.
func fitTokens(text string, maxTokens int) (string, int) {
	if maxTokens <= 0 {
		return text, 0
	}

	enc := encoder()
	if enc == nil {
		limit := maxTokens * 4
		if len(text) <= limit {
			return text, len(text) / 4
		}
		return cutBytes(text, limit), maxTokens
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, len(tokens)
	}
	return enc.Decode(tokens[:maxTokens]), maxTokens
}

// cutBytes keeps at most limit bytes without splitting a UTF-8 sequence.
func cutBytes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
