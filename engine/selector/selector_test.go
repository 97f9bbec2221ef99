package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GEOGUANSIN/normCode-sub001/engine/reference"
	"github.com/GEOGUANSIN/normCode-sub001/engine/wrapper"
)

type fakeResolver struct {
	files      map[string]string
	memorized  map[string]string
	prompts    map[string]string
}

func (f *fakeResolver) ReadFile(path string) (string, error) {
	if v, ok := f.files[path]; ok {
		return v, nil
	}
	return "", assertErr("no such file: " + path)
}

func (f *fakeResolver) ReadMemorizedValue(name string) (string, error) {
	if v, ok := f.memorized[name]; ok {
		return v, nil
	}
	return "", assertErr("no such memorized value: " + name)
}

func (f *fakeResolver) LoadPrompt(name string) (string, error) {
	if v, ok := f.prompts[name]; ok {
		return v, nil
	}
	return "", assertErr("no such prompt: " + name)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		files:     map[string]string{"a.md": "Hello", "b.md": "World"},
		memorized: map[string]string{},
		prompts:   map[string]string{},
	}
}

func TestApply_StripWrapper(t *testing.T) {
	t.Run("Should strip the wrapper and keep the inner content", func(t *testing.T) {
		source := reference.Leaf(wrapper.Wrap("path.txt", wrapper.TypeSavePath))
		out, err := Apply(Spec{StripWrapper: true}, source, newFakeResolver())
		require.NoError(t, err)
		assert.Equal(t, "path.txt", out.Materialize())
	})
}

func TestApply_NewWrapper(t *testing.T) {
	t.Run("Should rewrap the inner content under the new type", func(t *testing.T) {
		source := reference.Leaf(wrapper.Wrap("path.txt", wrapper.TypeSavePath))
		out, err := Apply(Spec{NewWrapper: "file_location"}, source, newFakeResolver())
		require.NoError(t, err)
		parsed, ok := wrapper.Parse(out.Materialize().(string))
		require.True(t, ok)
		assert.Equal(t, wrapper.TypeFileLocation, parsed.Type)
		assert.Equal(t, "path.txt", parsed.Content)
	})
}

func TestApply_IndexAndKey(t *testing.T) {
	t.Run("Should apply index then key on the standard path", func(t *testing.T) {
		source := reference.Leaf([]any{
			map[string]any{"x": "u", "y": "v"},
			map[string]any{"x": "p", "y": "q"},
		})
		idx := 1
		key := "y"
		out, err := Apply(Spec{Index: &idx, Key: &key}, source, newFakeResolver())
		require.NoError(t, err)
		assert.Equal(t, "q", out.Materialize())
	})
}

func TestApply_UnpackBeforeSelection(t *testing.T) {
	t.Run("Should explode the list and apply key per item, marking unpacked", func(t *testing.T) {
		source := reference.Leaf([]any{
			map[string]any{"path": "a.md", "extra": "x"},
			map[string]any{"path": "b.md", "extra": "y"},
		})
		key := "path"
		out, err := Apply(Spec{UnpackBeforeSelection: true, Key: &key}, source, newFakeResolver())
		require.NoError(t, err)
		assert.True(t, out.Unpacked)
		assert.Equal(t, []any{"a.md", "b.md"}, out.Materialize())
	})
}

func TestApply_Unpack(t *testing.T) {
	t.Run("Should mark the final list result as unpacked", func(t *testing.T) {
		source := reference.Leaf("plain")
		out, err := Apply(Spec{Unpack: true}, source, newFakeResolver())
		require.NoError(t, err)
		assert.True(t, out.Unpacked)
	})
}

func TestApply_Branch(t *testing.T) {
	t.Run("Should produce a dict combining raw path and resolved file content", func(t *testing.T) {
		source := reference.Leaf(wrapper.Wrap("a.md", wrapper.TypeFileLocation))
		out, err := Apply(Spec{Branch: map[string]string{"path": "NULL", "content": "file_location"}}, source, newFakeResolver())
		require.NoError(t, err)
		dict := out.Materialize().(map[string]any)
		assert.Equal(t, "a.md", dict["path"])
		assert.Equal(t, "Hello", dict["content"])
	})

	t.Run("Should branch per item when the selection is unpacked", func(t *testing.T) {
		source := reference.Leaf([]any{
			wrapper.Wrap("a.md", wrapper.TypeFileLocation),
			wrapper.Wrap("b.md", wrapper.TypeFileLocation),
		})
		out, err := Apply(Spec{
			Unpack: true,
			Branch: map[string]string{"path": "NULL", "content": "file_location"},
		}, source, newFakeResolver())
		require.NoError(t, err)
		assert.True(t, out.Unpacked)
	})
}

func TestResolveTree(t *testing.T) {
	t.Run("Should resolve a plain wrapped leaf via the resolution table", func(t *testing.T) {
		r := reference.Leaf(wrapper.Wrap("a.md", wrapper.TypeFileLocation))
		out, err := ResolveTree(r, newFakeResolver())
		require.NoError(t, err)
		assert.Equal(t, "Hello", out.Materialize())
	})

	t.Run("Should promote script_location to a Special", func(t *testing.T) {
		r := reference.Leaf(wrapper.Wrap("run.py", wrapper.TypeScriptLocation))
		out, err := ResolveTree(r, newFakeResolver())
		require.NoError(t, err)
		sp, ok := out.Materialize().(Special)
		require.True(t, ok)
		assert.Equal(t, "script_location", sp.Key)
		assert.Equal(t, "run.py", sp.Value)
	})
}

func TestFormatCombination(t *testing.T) {
	t.Run("Should name non-special values input_1, input_2, ... in order", func(t *testing.T) {
		combo := []any{"first", "second"}
		out := FormatCombination(combo)
		assert.Equal(t, "first", out.Get("input_1").Materialize())
		assert.Equal(t, "second", out.Get("input_2").Materialize())
	})

	t.Run("Should promote specials to their canonical key without consuming an input_N slot", func(t *testing.T) {
		combo := []any{Special{Key: "save_path", Value: "out.txt"}, "only-positional"}
		out := FormatCombination(combo)
		assert.Equal(t, "out.txt", out.Get("save_path").Materialize())
		assert.Equal(t, "only-positional", out.Get("input_1").Materialize())
	})
}

func TestBuildValues_CrossProduct(t *testing.T) {
	t.Run("Should cross seeds sharing a source via different selectors against a single dict leaf", func(t *testing.T) {
		// value_order = {A:0, B:1}; both selectors target the same source
		// concept with different keys; source has one dict leaf {x,y}.
		order := []OrderEntry{{Name: "A", Index: 0}, {Name: "B", Index: 1}}
		keyX, keyY := "x", "y"
		selectors := map[string]Spec{
			"A": {SourceConcept: "Shared", Key: &keyX},
			"B": {SourceConcept: "Shared", Key: &keyY},
		}
		seeds := []Seed{
			{ConceptName: "Shared", Ref: reference.Leaf(map[string]any{"x": "u", "y": "v"})},
		}
		out, err := BuildValues(order, selectors, seeds, newFakeResolver())
		require.NoError(t, err)
		require.Len(t, out.Items, 1)
		dict := out.Items[0]
		assert.Equal(t, "u", dict.Get("input_1").Materialize())
		assert.Equal(t, "v", dict.Get("input_2").Materialize())
	})

	t.Run("Should build a cross product across two independent seed axes", func(t *testing.T) {
		order := []OrderEntry{{Name: "Letter", Index: 0}, {Name: "Number", Index: 1}}
		seeds := []Seed{
			{ConceptName: "Letter", Ref: reference.List(reference.Leaf("a"), reference.Leaf("b"))},
			{ConceptName: "Number", Ref: reference.List(reference.Leaf(1), reference.Leaf(2))},
		}
		// No selectors: each seed reference is used as-is (its own leaves
		// form the axis).
		selectors := map[string]Spec{}
		out, err := BuildValues(order, selectors, seeds, newFakeResolver())
		require.NoError(t, err)
		assert.Len(t, out.Items, 4)
	})
}
