package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/model"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `  [1] `, want: `[1]`},
		{name: "json fence", in: "```json\n[{\"a\":1}]\n```", want: `[{"a":1}]`},
		{name: "bare fence", in: "```\n[]\n```", want: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.in))
		})
	}
}

func TestParseWasteList(t *testing.T) {
	t.Run("valid items", func(t *testing.T) {
		items, err := parseWasteList(`[{"wasteType":"Plastic bottle","material":"PET","recyclable":"yes","disposalInstructions":"Rinse","funFact":"PET 1","imageUrl":" https://x/y.jpg "}]`)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, model.RecyclableYes, items[0].Recyclable)
		assert.Equal(t, "https://x/y.jpg", items[0].ImageURL)
	})

	t.Run("empty array", func(t *testing.T) {
		items, err := parseWasteList("```json\n[]\n```")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	malformed := map[string]string{
		"object":           `{"wasteType":"Can"}`,
		"null":             `null`,
		"prose":            `I see a can.`,
		"missing type":     `[{"material":"Steel","recyclable":"Yes"}]`,
		"bad recyclable":   `[{"wasteType":"Can","recyclable":"Maybe"}]`,
		"item not object":  `["Can"]`,
		"truncated output": `[{"wasteType":"Can"`,
	}
	for name, in := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := parseWasteList(in)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseQuiz(t *testing.T) {
	qs, err := parseQuiz(`[{"itemName":"Battery","questionText":"Where?","options":["A","B","C"],"correctAnswer":"A","explanation":"e"}]`)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Battery", qs[0].ItemName)

	_, err = parseQuiz(`{"questions":[]}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
