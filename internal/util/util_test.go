package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{"type": "string", "enum": []string{"success", "failure"}},
			"count":  map[string]any{"type": "integer"},
		},
		"required": []string{"status"},
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateParameters(map[string]any{"status": "success", "count": float64(2)}, schema))
	})

	t.Run("missing required from string slice", func(t *testing.T) {
		err := ValidateParameters(map[string]any{}, schema)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "status", vErr.Field)
	})

	t.Run("missing required from decoded json", func(t *testing.T) {
		decoded := map[string]any{"required": []any{"status"}}
		assert.Error(t, ValidateParameters(map[string]any{}, decoded))
	})

	t.Run("wrong type", func(t *testing.T) {
		assert.Error(t, ValidateParameters(map[string]any{"status": "success", "count": 1.5}, schema))
	})

	t.Run("outside enum", func(t *testing.T) {
		err := ValidateParameters(map[string]any{"status": "maybe"}, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be one of")
	})
}

func TestCreateSchema(t *testing.T) {
	type args struct {
		Query string  `json:"query" description:"Text to search"`
		Limit *int    `json:"limit"`
		Skip  float64 `json:"skip,omitempty"`
	}

	schema := CreateSchema(args{})
	props := schema["properties"].(map[string]any)

	assert.Equal(t, "string", props["query"].(map[string]any)["type"])
	assert.Equal(t, "Text to search", props["query"].(map[string]any)["description"])
	assert.Equal(t, "integer", props["limit"].(map[string]any)["type"])
	assert.Equal(t, []string{"query"}, schema["required"])
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("You are {{.name}}. Peers: {{join \", \" .peers}}.", map[string]any{
		"name":  "Alice",
		"peers": []string{"Bob", "Host"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are Alice. Peers: Bob, Host.", out)

	plain, err := RenderTemplate("no markers <here>", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers <here>", plain)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}
