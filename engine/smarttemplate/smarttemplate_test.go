package smarttemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsedInputs(t *testing.T) {
	t.Run("Should find both $name and ${name} forms", func(t *testing.T) {
		used := UsedInputs("Primary: $input_1 and also ${input_2}")
		assert.True(t, used["input_1"])
		assert.True(t, used["input_2"])
		assert.False(t, used["input_3"])
	})
}

func TestBundle(t *testing.T) {
	t.Run("Should bundle unused string inputs as plain XML blocks", func(t *testing.T) {
		pool := map[string]any{
			"prompt_template": "Primary: $input_1",
			"input_1":         "used",
			"input_2":         "leftover",
		}
		augmented, tmplText, err := Bundle(pool, "prompt_template", "bundle")
		require.NoError(t, err)
		assert.Equal(t, "Primary: $input_1", tmplText)
		assert.Equal(t, "used", augmented["input_1"])
		assert.Equal(t, "<file_1>leftover</file_1>", augmented["bundle"])
		_, stillHasTemplate := augmented["prompt_template"]
		assert.False(t, stillHasTemplate)
	})

	t.Run("Should bundle dict inputs with a content key as inner text and the rest as attributes", func(t *testing.T) {
		pool := map[string]any{
			"prompt_template": "Primary: $input_1",
			"input_1":         "used",
			"input_2":         map[string]any{"path": "a.md", "content": "Hello"},
		}
		augmented, _, err := Bundle(pool, "prompt_template", "bundle")
		require.NoError(t, err)
		assert.Equal(t, `<file_1 path="a.md">Hello</file_1>`, augmented["bundle"])
	})

	t.Run("Should self-close a dict input with no content-like key", func(t *testing.T) {
		pool := map[string]any{
			"prompt_template": "Primary: $input_1",
			"input_1":         "used",
			"input_2":         map[string]any{"path": "a.md"},
		}
		augmented, _, err := Bundle(pool, "prompt_template", "bundle")
		require.NoError(t, err)
		assert.Equal(t, `<file_1 path="a.md"/>`, augmented["bundle"])
	})

	t.Run("Should number bundled blocks sequentially in input_N order", func(t *testing.T) {
		pool := map[string]any{
			"prompt_template": "Primary: $input_1",
			"input_1":         "used",
			"input_3":         "third",
			"input_2":         "second",
		}
		augmented, _, err := Bundle(pool, "prompt_template", "bundle")
		require.NoError(t, err)
		assert.Equal(t, "<file_1>second</file_1>\n<file_2>third</file_2>", augmented["bundle"])
	})

	t.Run("Should not add a bundle key when every input is used", func(t *testing.T) {
		pool := map[string]any{
			"prompt_template": "Primary: $input_1",
			"input_1":         "used",
		}
		augmented, _, err := Bundle(pool, "prompt_template", "bundle")
		require.NoError(t, err)
		_, ok := augmented["bundle"]
		assert.False(t, ok)
	})
}

func TestRender(t *testing.T) {
	t.Run("Should substitute $name and ${name} placeholders", func(t *testing.T) {
		out, err := Render("Hello $name, your id is ${id}.", map[string]any{"name": "Ada", "id": "42"})
		require.NoError(t, err)
		assert.Equal(t, "Hello Ada, your id is 42.", out)
	})
}

func TestSubstitute(t *testing.T) {
	t.Run("Should bundle unused inputs then render the template against the augmented pool", func(t *testing.T) {
		pool := map[string]any{
			"prompt_template": "Primary: $input_1\n$bundle",
			"input_1":         "Hello",
			"input_2":         map[string]any{"path": "b.md", "content": "World"},
		}
		out, err := Substitute(pool, "prompt_template", "bundle")
		require.NoError(t, err)
		assert.Equal(t, "Primary: Hello\n<file_1 path=\"b.md\">World</file_1>", out)
	})
}
