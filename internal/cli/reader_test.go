package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{name: "plain line", input: "plastic bottle\n", expected: "plastic bottle"},
		{name: "surrounding whitespace", input: "  battery  \n", expected: "battery"},
		{name: "empty line", input: "\n", expected: ""},
		{name: "last line without newline", input: "pizza box", expected: "pizza box"},
		{name: "end of input", input: "", wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			result, err := nbr.ReadLine(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNonBlockingReader_ContextCancellation(t *testing.T) {
	t.Run("immediate cancellation", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pw.Close() }()
		nbr := NewNonBlockingReader(pr)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := nbr.ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})

	t.Run("cancellation during read", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()
		defer func() { _ = pw.Close() }()
		nbr := NewNonBlockingReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := nbr.ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})
}

func TestNonBlockingReader_MultipleReads(t *testing.T) {
	nbr := NewNonBlockingReader(strings.NewReader("glass jar\ncoffee cup\n"))
	ctx := context.Background()

	first, err := nbr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "glass jar", first)

	second, err := nbr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "coffee cup", second)
}

func TestNonBlockingReader_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			got, err := nbr.Confirm(context.Background(), &out, "Reset everything?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Reset everything? [y/N]")
		})
	}
}
