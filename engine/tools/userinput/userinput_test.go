package userinput

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Ask(t *testing.T) {
	t.Run("Should print the question and return the single line reply", func(t *testing.T) {
		var out bytes.Buffer
		s := NewWithIO(strings.NewReader("Ada\n"), &out)
		answer, err := s.Ask("What is your name?")
		require.NoError(t, err)
		assert.Equal(t, "Ada", answer)
		assert.Contains(t, out.String(), "What is your name?")
	})
}

func TestSource_Interact(t *testing.T) {
	t.Run("Should select an option by its 1-based numeric reply", func(t *testing.T) {
		var out bytes.Buffer
		s := NewWithIO(strings.NewReader("2\n"), &out)
		choice, err := s.Interact("pick one", []string{"red", "green", "blue"})
		require.NoError(t, err)
		assert.Equal(t, "green", choice)
	})

	t.Run("Should pass through a non-numeric reply literally", func(t *testing.T) {
		var out bytes.Buffer
		s := NewWithIO(strings.NewReader("custom answer\n"), &out)
		choice, err := s.Interact("pick one", []string{"red", "green"})
		require.NoError(t, err)
		assert.Equal(t, "custom answer", choice)
	})
}

func TestSource_EditText(t *testing.T) {
	t.Run("Should run the configured editor over the initial content", func(t *testing.T) {
		dir := t.TempDir()
		editorScript := filepath.Join(dir, "fake_editor.sh")
		require.NoError(t, os.WriteFile(editorScript, []byte("#!/bin/sh\necho edited >> \"$1\"\n"), 0o755))

		s := New()
		s.Editor = editorScript
		edited, err := s.EditText("original\n")
		require.NoError(t, err)
		assert.Contains(t, edited, "original")
		assert.Contains(t, edited, "edited")
	})
}

func TestSource_Invoke(t *testing.T) {
	t.Run("Should dispatch create_input_function via Invoke", func(t *testing.T) {
		var out bytes.Buffer
		s := NewWithIO(strings.NewReader("Ada\n"), &out)
		result, err := s.Invoke("create_input_function", map[string]any{"question": "name?"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Ada", result)
	})

	t.Run("Should error for an unknown method", func(t *testing.T) {
		s := New()
		_, err := s.Invoke("nope", nil, nil)
		assert.Error(t, err)
	})
}
