// Package body implements the agent body: the explicit environment struct
// holding live tool instances for one inference (spec §6 "Body / tool
// container", §9 DESIGN NOTE "re-express as an explicit environment struct
// passed through the inference ... no ambient globals").
package body

import (
	"fmt"

	"github.com/GEOGUANSIN/normCode-sub001/engine/composition"
	"github.com/GEOGUANSIN/normCode-sub001/engine/core"
	"github.com/GEOGUANSIN/normCode-sub001/engine/paradigm"
)

// FileSystem is the file_system tool contract (spec §6): read/save are
// reached through Invoke by affordance name, while Read/ReadMemorizedValue
// are called directly by the selector's wrapper resolution table (§4.7).
type FileSystem interface {
	composition.Invokable
	Read(path string) (string, error)
	ReadMemorizedValue(name string) (string, error)
}

// PromptSource is the prompt_tool contract (spec §6 "prompt_tool.read(name)
// returns an object with a .template string").
type PromptSource interface {
	composition.Invokable
	Read(name string) (string, error)
}

// ParadigmSource exposes the paradigm registry as a bound tool so a
// paradigm may itself compose paradigm_tool.load/list_manifest like any
// other affordance (spec §6 "paradigm_tool.load(name),
// paradigm_tool.list_manifest()").
type ParadigmSource interface {
	composition.Invokable
	Load(name string) (*paradigm.Paradigm, error)
	ListManifest() (string, error)
}

// Body is the tool container shared read-only across one inference's steps
// (spec §5 "shared resource policy"). Every non-nil field is reachable both
// by name through Tools() (for MFP's env_spec binding) and directly through
// its typed field (for the selector's wrapper resolution and IWI's vertical
// inputs, e.g. states.body.base_dir).
type Body struct {
	BaseDir *core.PathCWD

	LLM         composition.Invokable
	FileSystem  FileSystem
	Script      composition.Invokable // python_interpreter
	Formatter   composition.Invokable // formatter_tool
	Composition composition.Invokable // composition_tool
	UserInput   composition.Invokable // user_input
	Prompt      PromptSource
	Paradigm    ParadigmSource
}

// Tools returns the name → instance map env_spec.tools binds against
// (spec §4.4 step 1 "look up the corresponding live instance on the body by
// name"). Nil fields are omitted so a missing tool surfaces as MFP's
// documented "tool not found on body" error rather than a nil dereference.
func (b *Body) Tools() map[string]composition.Invokable {
	tools := make(map[string]composition.Invokable, 8)
	add := func(name string, tool composition.Invokable) {
		if tool != nil {
			tools[name] = tool
		}
	}
	add("llm", b.LLM)
	add("file_system", b.FileSystem)
	add("python_interpreter", b.Script)
	add("formatter_tool", b.Formatter)
	add("composition_tool", b.Composition)
	add("user_input", b.UserInput)
	if b.Prompt != nil {
		add("prompt_tool", b.Prompt)
	}
	if b.Paradigm != nil {
		add("paradigm_tool", b.Paradigm)
	}
	return tools
}

// BaseDirPath renders BaseDir for states.body.base_dir, the vertical-input
// MetaValue example given throughout spec §4.2/§4.4.
func (b *Body) BaseDirPath() string {
	return b.BaseDir.PathStr()
}

// ReadFile, ReadMemorizedValue and LoadPrompt let *Body satisfy
// engine/selector.Resolver directly, delegating to the bound file_system and
// prompt_tool instances.
func (b *Body) ReadFile(path string) (string, error) {
	if b.FileSystem == nil {
		return "", fmt.Errorf("body: no file_system tool bound")
	}
	return b.FileSystem.Read(path)
}

func (b *Body) ReadMemorizedValue(name string) (string, error) {
	if b.FileSystem == nil {
		return "", fmt.Errorf("body: no file_system tool bound")
	}
	return b.FileSystem.ReadMemorizedValue(name)
}

func (b *Body) LoadPrompt(name string) (string, error) {
	if b.Prompt == nil {
		return "", fmt.Errorf("body: no prompt_tool bound")
	}
	return b.Prompt.Read(name)
}
