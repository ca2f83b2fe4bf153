package gemini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", `{"deforestation_detected": false}`},
		{"fenced", "```json\n{\"deforestation_detected\": false}\n```"},
		{"bare fence", "```\n{\"deforestation_detected\": false}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseJSONResponse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, false, out["deforestation_detected"])
		})
	}

	_, err := ParseJSONResponse("I cannot assess this region.")
	assert.Error(t, err)
}

func TestGeminiClientSelector_RoundRobin(t *testing.T) {
	selector := NewGeminiClientSelector(make([]GeminiClient, 3))

	_, first := selector.GetNextClient()
	_, second := selector.GetNextClient()
	_, third := selector.GetNextClient()
	_, fourth := selector.GetNextClient()

	assert.Equal(t, []int{0, 1, 2, 0}, []int{first, second, third, fourth})
}

func TestGeminiClientSelector_TryAllClients(t *testing.T) {
	selector := NewGeminiClientSelector(make([]GeminiClient, 3))

	var tried []int
	err := selector.TryAllClients(func(_ *GeminiClient, idx int) error {
		tried = append(tried, idx)
		if idx < 2 {
			return errors.New("rate limited")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, tried)

	failure := errors.New("invalid key")
	err = selector.TryAllClients(func(*GeminiClient, int) error { return failure })
	assert.ErrorIs(t, err, failure)

	err = NewGeminiClientSelector(nil).TryAllClients(func(*GeminiClient, int) error { return nil })
	assert.Error(t, err)
}
