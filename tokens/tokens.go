// Package tokens counts prompt tokens offline using tiktoken encodings.
package tokens

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/tiktoken-go/tokenizer"
)

// Display formats for token counts.
const (
	FormatHuman = "human"
	FormatRaw   = "raw"
)

// Counter counts tokens for one tiktoken encoding.
type Counter struct {
	encoding string
	codec    tokenizer.Codec
}

// NewCounter creates a counter for the named encoding (cl100k_base,
// o200k_base).
func NewCounter(encoding string) (*Counter, error) {
	codec, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("unknown tokenizer encoding %q: %w", encoding, err)
	}
	return &Counter{encoding: encoding, codec: codec}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	count, err := c.codec.Count(text)
	if err != nil {
		return 0, fmt.Errorf("token counting failed for encoding %s: %w", c.encoding, err)
	}
	return count, nil
}

// Encoding returns the encoding name this counter was built with.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Format renders a token count in the requested display format. Human format
// uses comma grouping; raw is the bare integer.
func Format(count int, format string) string {
	if format == FormatHuman {
		return humanize.Comma(int64(count))
	}
	return strconv.Itoa(count)
}
