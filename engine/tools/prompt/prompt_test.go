package prompt

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T) *Source {
	t.Helper()
	afs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(afs, "/prompts/greet.md", []byte("Hi $name"), 0o644))
	return NewWithFs("/prompts", afs)
}

func TestSource_Read(t *testing.T) {
	t.Run("Should find a prompt by name with a recognized extension", func(t *testing.T) {
		s := newTestSource(t)
		text, err := s.Read("greet")
		require.NoError(t, err)
		assert.Equal(t, "Hi $name", text)
	})

	t.Run("Should error for an unknown prompt", func(t *testing.T) {
		s := newTestSource(t)
		_, err := s.Read("missing")
		assert.Error(t, err)
	})
}

func TestSource_ReadTemplate(t *testing.T) {
	t.Run("Should wrap the text in a Template carrying name and content", func(t *testing.T) {
		s := newTestSource(t)
		tmpl, err := s.ReadTemplate("greet")
		require.NoError(t, err)
		assert.Equal(t, "greet", tmpl.Name)
		assert.Equal(t, "Hi $name", tmpl.Template)
	})
}

func TestSource_Invoke(t *testing.T) {
	t.Run("Should dispatch read via Invoke", func(t *testing.T) {
		s := newTestSource(t)
		result, err := s.Invoke("read", map[string]any{"name": "greet"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hi $name", result.(*Template).Template)
	})

	t.Run("Should error for an unknown method", func(t *testing.T) {
		s := newTestSource(t)
		_, err := s.Invoke("nope", nil, nil)
		assert.Error(t, err)
	})
}
