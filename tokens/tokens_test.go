package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCounter_KnownEncodings(t *testing.T) {
	for _, encoding := range []string{"cl100k_base", "o200k_base"} {
		counter, err := NewCounter(encoding)
		require.NoError(t, err, encoding)
		assert.Equal(t, encoding, counter.Encoding())
	}
}

func TestNewCounter_UnknownEncoding(t *testing.T) {
	_, err := NewCounter("made_up_base")
	assert.Error(t, err)
}

func TestCount_NonEmptyText(t *testing.T) {
	counter, err := NewCounter("cl100k_base")
	require.NoError(t, err)

	count, err := counter.Count("def greet():\n    return 'hello'\n")
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	empty, err := counter.Count("")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1,234,567", Format(1234567, FormatHuman))
	assert.Equal(t, "1234567", Format(1234567, FormatRaw))
	assert.Equal(t, "42", Format(42, ""))
}
