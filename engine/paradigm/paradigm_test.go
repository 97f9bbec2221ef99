package paradigm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const askUserParadigm = `{
  "metadata": {
    "description": "Ask the user a single question.",
    "inputs": {"vertical": [], "horizontal": ["input_1"]},
    "tags": ["interactive"]
  },
  "env_spec": {
    "tools": [
      {
        "tool_name": "user_input",
        "affordances": [{"affordance_name": "ask", "call_code": "user_input.create_input_function"}]
      }
    ]
  },
  "sequence_spec": {
    "steps": [
      {
        "step_index": 0,
        "affordance": "ask",
        "params": {"base_dir": {"__type__": "MetaValue", "key": "states.body.base_dir"}},
        "result_key": "ask_bound"
      },
      {
        "step_index": 1,
        "affordance": "composition_tool.compose",
        "params": {
          "plan": [
            {
              "output_key": "answer",
              "function": {"__type__": "MetaValue", "key": "ask_bound"},
              "params": {"__positional__": "__initial_input__"}
            }
          ],
          "return_key": "answer"
        },
        "result_key": "run"
      }
    ]
  }
}`

const childParadigm = `{
  "extends": "ask_user",
  "metadata": {"description": "Ask the user, logging extra context."}
}`

func writeParadigm(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestFSRegistry_Load(t *testing.T) {
	t.Run("Should load a paradigm's metadata, env_spec and sequence_spec", func(t *testing.T) {
		dir := t.TempDir()
		writeParadigm(t, dir, "ask_user.json", askUserParadigm)

		reg := NewFSRegistry(dir)
		p, err := reg.Load("ask_user")
		require.NoError(t, err)

		assert.Equal(t, "Ask the user a single question.", p.Metadata.Description)
		assert.Equal(t, []string{"input_1"}, p.Metadata.Inputs.Horizontal)
		assert.Equal(t, []any{"interactive"}, p.Metadata.Extra["tags"])

		require.Len(t, p.EnvSpec.Tools, 1)
		assert.Equal(t, "user_input", p.EnvSpec.Tools[0].ToolName)
		require.Len(t, p.EnvSpec.Tools[0].Affordances, 1)
		assert.Equal(t, "ask", p.EnvSpec.Tools[0].Affordances[0].Name)

		require.Len(t, p.SequenceSpec.Steps, 2)
		step0 := p.SequenceSpec.Steps[0]
		assert.False(t, step0.IsCompositionStep())
		sentinels := step0.Sentinels()
		require.Contains(t, sentinels, "base_dir")
		assert.Equal(t, "states.body.base_dir", string(sentinels["base_dir"]))

		step1 := p.SequenceSpec.Steps[1]
		assert.True(t, step1.IsCompositionStep())
		plan, err := step1.CompositionPlan()
		require.NoError(t, err)
		assert.Equal(t, "answer", plan.ReturnKey)
		require.Len(t, plan.Nodes, 1)
		assert.Equal(t, "ask_bound", plan.Nodes[0].Function)
		assert.Equal(t, "__initial_input__", plan.Nodes[0].Params["__positional__"])
	})

	t.Run("Should error with not-found for an unknown paradigm name", func(t *testing.T) {
		reg := NewFSRegistry(t.TempDir())
		_, err := reg.Load("nope")
		assert.Error(t, err)
	})

	t.Run("Should error on malformed JSON", func(t *testing.T) {
		dir := t.TempDir()
		writeParadigm(t, dir, "broken.json", "{not valid json")
		reg := NewFSRegistry(dir)
		_, err := reg.Load("broken")
		assert.Error(t, err)
	})

	t.Run("Should cache a loaded paradigm across calls", func(t *testing.T) {
		dir := t.TempDir()
		writeParadigm(t, dir, "ask_user.json", askUserParadigm)
		reg := NewFSRegistry(dir)
		first, err := reg.Load("ask_user")
		require.NoError(t, err)
		second, err := reg.Load("ask_user")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})
}

func TestFSRegistry_Extends(t *testing.T) {
	t.Run("Should inherit env_spec and sequence_spec from the base paradigm", func(t *testing.T) {
		dir := t.TempDir()
		writeParadigm(t, dir, "ask_user.json", askUserParadigm)
		writeParadigm(t, dir, "ask_user_verbose.json", childParadigm)

		reg := NewFSRegistry(dir)
		p, err := reg.Load("ask_user_verbose")
		require.NoError(t, err)

		assert.Equal(t, "Ask the user, logging extra context.", p.Metadata.Description)
		assert.Equal(t, []string{"input_1"}, p.Metadata.Inputs.Horizontal)
		assert.Empty(t, p.Extends)
		require.Len(t, p.SequenceSpec.Steps, 2)
		assert.Equal(t, "ask_user_verbose", p.Name)
	})

	t.Run("Should detect an extends cycle", func(t *testing.T) {
		dir := t.TempDir()
		writeParadigm(t, dir, "a.json", `{"extends": "b", "metadata": {"description": "a"}}`)
		writeParadigm(t, dir, "b.json", `{"extends": "a", "metadata": {"description": "b"}}`)

		reg := NewFSRegistry(dir)
		_, err := reg.Load("a")
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestFSRegistry_ListManifest(t *testing.T) {
	t.Run("Should format one bulleted entry per loadable paradigm", func(t *testing.T) {
		dir := t.TempDir()
		writeParadigm(t, dir, "ask_user.json", askUserParadigm)
		writeParadigm(t, dir, "ask_user_verbose.json", childParadigm)

		reg := NewFSRegistry(dir)
		manifest, err := reg.ListManifest()
		require.NoError(t, err)

		assert.Contains(t, manifest, "- ask_user: Ask the user a single question. (vertical: ; horizontal: input_1)")
		assert.Contains(t, manifest, "- ask_user_verbose: Ask the user, logging extra context.")
	})
}
