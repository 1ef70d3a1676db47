package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	t.Run("json fence", func(t *testing.T) {
		text := "Here you go:\n```json\n{\"chapters\":[]}\n```\nHope that helps."
		got := ExtractJSONBlock(text)
		assert.Equal(t, `{"chapters":[]}`, got)

		var parsed struct {
			Chapters []any `json:"chapters"`
		}
		require.NoError(t, json.Unmarshal([]byte(got), &parsed))
		assert.NotNil(t, parsed.Chapters)
		assert.Empty(t, parsed.Chapters)
	})

	t.Run("generic fence", func(t *testing.T) {
		text := "```\n[{\"title\":\"a\"}]\n```"
		assert.Equal(t, `[{"title":"a"}]`, ExtractJSONBlock(text))
	})

	t.Run("bare object", func(t *testing.T) {
		text := "  {\"answer\": \"42\"}  "
		assert.Equal(t, `{"answer": "42"}`, ExtractJSONBlock(text))
	})

	t.Run("bare array", func(t *testing.T) {
		text := `["q1","q2"]`
		assert.Equal(t, `["q1","q2"]`, ExtractJSONBlock(text))
	})

	t.Run("plain prose returns trimmed text", func(t *testing.T) {
		text := "  Sorry, I cannot produce JSON today. "
		got := ExtractJSONBlock(text)
		assert.Equal(t, "Sorry, I cannot produce JSON today.", got)
		assert.Error(t, json.Unmarshal([]byte(got), &map[string]any{}))
	})

	t.Run("unterminated fence falls through to trimmed text", func(t *testing.T) {
		text := "```json\n{\"a\":1}"
		assert.Equal(t, "```json\n{\"a\":1}", ExtractJSONBlock(text))
	})
}

func TestRepairJSON(t *testing.T) {
	t.Run("missing opening quote on key", func(t *testing.T) {
		broken := `{"title": "x", notes": "y"}`
		fixed := RepairJSON(broken)

		var parsed map[string]string
		require.NoError(t, json.Unmarshal([]byte(fixed), &parsed))
		assert.Equal(t, "y", parsed["notes"])
	})

	t.Run("valid json unchanged", func(t *testing.T) {
		valid := `{"title": "x", "notes": "y"}`
		assert.Equal(t, valid, RepairJSON(valid))
	})

	t.Run("arrays pass through", func(t *testing.T) {
		valid := `[{"title": "a"}, {"title": "b"}]`
		var parsed []map[string]string
		require.NoError(t, json.Unmarshal([]byte(RepairJSON(valid)), &parsed))
		assert.Len(t, parsed, 2)
	})
}
