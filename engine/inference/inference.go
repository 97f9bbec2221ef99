// Package inference implements the five-step inference sequence (spec §2):
// IWI (§4.3), MFP (§4.4), MVP (§4.5), TVA (§4.6), and the per-inference
// state machine (§4.9). MIA (§2's table: "emitted from within the compiled
// function") is not a separate step here - a paradigm's own composition
// plan ends with a formatter_tool.wrap node, so the value TVA collects from
// the compiled function is already the typed, wrapped output spec §3's
// invariant requires ("Output references produced by an inference are
// always wrapped (typed) strings or lists thereof").
//
// Grounded on engine/domain/task/transition.go's ordered-step,
// explicit-status-enum, fatal-vs-recoverable-error shape (kept as reference
// only - that generation imports packages this pack does not carry forward,
// see DESIGN.md's final adaptation pass), generalized here to the fixed
// five-step sequence every paradigm runs.
package inference

import (
	"fmt"

	"github.com/GEOGUANSIN/normCode-sub001/engine/body"
	"github.com/GEOGUANSIN/normCode-sub001/engine/composition"
	"github.com/GEOGUANSIN/normCode-sub001/engine/core"
	"github.com/GEOGUANSIN/normCode-sub001/engine/paradigm"
	"github.com/GEOGUANSIN/normCode-sub001/engine/reference"
	"github.com/GEOGUANSIN/normCode-sub001/engine/selector"
	"github.com/GEOGUANSIN/normCode-sub001/pkg/logger"
)

// Status is the per-inference state machine (spec §4.9): states progress
// INIT → IWI_DONE → MFP_DONE → MVP_DONE → TVA_DONE → COMPLETE, with FAILED
// reachable from any step.
type Status string

const (
	StatusInit     Status = "INIT"
	StatusIWIDone  Status = "IWI_DONE"
	StatusMFPDone  Status = "MFP_DONE"
	StatusMVPDone  Status = "MVP_DONE"
	StatusTVADone  Status = "TVA_DONE"
	StatusComplete Status = "COMPLETE"
	StatusFailed   Status = "FAILED"
)

// Concept is a named slot that may hold a reference (spec §3 "Concept").
type Concept struct {
	Name string
	Ref  *reference.Ref
}

// WorkingInterpretation is an inference record's working_interpretation
// (spec §3): the paradigm name, value ordering/selectors, and an optional
// seed of concept values.
type WorkingInterpretation struct {
	Paradigm       string
	ValueOrder     map[string]int
	ValueSelectors map[string]selector.Spec
	Values         []Concept // optional seed (spec §4.3 "values seeded from working_interpretation.values")
}

// Record is one inference record (spec §3 "Inference record").
type Record struct {
	ConceptToInfer        string
	FunctionConcept       Concept
	ValueConcepts         []Concept
	WorkingInterpretation WorkingInterpretation
}

// Options tunes TVA's non-default behaviors (SPEC_FULL §3 "supplemented
// features"): CreateAxisOnListOutput is spec §4.6's optional flag;
// BestEffort is the explicitly-allowed (not required) configurable
// best-effort TVA mode.
type Options struct {
	CreateAxisOnListOutput bool
	BestEffort             bool
}

// Inference holds one run's state machine status and accumulated
// dotted-path state tree (the states.<step>.<field> snapshot MetaValue
// sentinels resolve against).
type Inference struct {
	Status Status
	State  *composition.State
	log    logger.Logger
}

// New starts a fresh inference in the INIT state.
func New(log logger.Logger) *Inference {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	return &Inference{Status: StatusInit, State: composition.NewState(), log: log}
}

func (inf *Inference) fail(err error) error {
	inf.Status = StatusFailed
	return err
}

// IWI implements spec §4.3: resolve the paradigm name, load the blueprint,
// and populate state with the function concept's vertical-input anchor.
// Missing paradigm is fatal for the inference (spec §7 "Configuration
// errors").
func (inf *Inference) IWI(record Record, registry paradigm.Registry) (*paradigm.Paradigm, error) {
	wi := record.WorkingInterpretation
	if wi.Paradigm == "" {
		return nil, inf.fail(core.NewError(
			fmt.Errorf("working_interpretation.paradigm is required"),
			core.CodeConfiguration, nil,
		).WithStep("IWI"))
	}

	p, err := registry.Load(wi.Paradigm)
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeConfiguration, nil).
			WithStep("IWI").WithParadigm(wi.Paradigm))
	}

	if err := inf.State.Set("states.paradigm.name", wi.Paradigm); err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeConfiguration, nil).WithStep("IWI"))
	}
	if err := inf.State.Set("states.function.concept.name", record.FunctionConcept.Name); err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeConfiguration, nil).WithStep("IWI"))
	}
	if err := inf.State.Set("states.inference.concept_to_infer", record.ConceptToInfer); err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeConfiguration, nil).WithStep("IWI"))
	}

	inf.log.Debug("IWI: paradigm loaded", "paradigm", wi.Paradigm)
	inf.Status = StatusIWIDone
	return p, nil
}

// BindBaseDir publishes the agent's base directory as the states.body.base_dir
// vertical-input source spec §4.2/§4.4 use as their canonical example
// (e.g. "states.body.base_dir"). Call before MFP so step params resolving
// that sentinel see it.
func (inf *Inference) BindBaseDir(b *body.Body) error {
	if b == nil {
		return nil
	}
	if err := inf.State.Set("states.body.base_dir", b.BaseDirPath()); err != nil {
		return core.NewError(err, core.CodeConfiguration, nil).WithStep("IWI")
	}
	return nil
}

// ComposedFunc is the single callable MFP compiles and TVA invokes once per
// MVP-produced input combination.
type ComposedFunc func(vars map[string]any) (any, error)

// MFP implements spec §4.4: bind every declared tool/affordance, run the
// non-composition steps to populate the MFP scope, then compile the final
// composition step's plan into the top-level function TVA will invoke.
func (inf *Inference) MFP(p *paradigm.Paradigm, b *body.Body) (ComposedFunc, error) {
	functions, err := composition.BindAffordances(p.EnvSpec, b.Tools())
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeBinding, nil).
			WithStep("MFP").WithParadigm(p.Name))
	}

	snapshot, err := inf.State.Snapshot()
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeBinding, nil).WithStep("MFP").WithParadigm(p.Name))
	}

	var steps []composition.Step
	var finalStep *paradigm.SequenceStep
	for i := range p.SequenceSpec.Steps {
		s := p.SequenceSpec.Steps[i]
		if s.IsCompositionStep() {
			step := s
			finalStep = &step
			continue
		}
		steps = append(steps, composition.Step{
			ResultKey:  s.ResultKey,
			Affordance: s.Affordance,
			Params:     s.Params,
			Sentinels:  s.Sentinels(),
		})
	}
	if finalStep == nil {
		return nil, inf.fail(core.NewError(
			fmt.Errorf("paradigm %q declares no composition step", p.Name),
			core.CodeConfiguration, nil,
		).WithStep("MFP").WithParadigm(p.Name))
	}

	scope, err := composition.RunSteps(steps, functions, snapshot)
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeBinding, nil).
			WithStep("MFP").WithParadigm(p.Name))
	}

	// The final step's plan nodes may reference either a raw affordance
	// name or a prior step's result_key (spec §6 "the same sentinel
	// denotes a MFP-scope callable reference"), so Compose's function
	// table is the union of both, with bound step results (more specific)
	// taking precedence over bare affordances of the same name.
	merged := make(map[string]composition.Callable, len(functions)+len(scope))
	for k, v := range functions {
		merged[k] = v
	}
	for k, v := range scope {
		merged[k] = v
	}

	plan, err := finalStep.CompositionPlan()
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeConfiguration, nil).
			WithStep("MFP").WithParadigm(p.Name))
	}

	composed, err := composition.Compose(plan, merged)
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeBinding, nil).
			WithStep("MFP").WithParadigm(p.Name))
	}

	inf.log.Debug("MFP: composed function ready", "paradigm", p.Name, "return_key", plan.ReturnKey)
	inf.Status = StatusMFPDone
	return ComposedFunc(composed), nil
}

// MVP implements spec §4.5: order, select, resolve, and cross-product the
// working interpretation's values into one reference.Ref List of
// ready-to-consume input dicts.
func (inf *Inference) MVP(record Record, resolver selector.Resolver) (*reference.Ref, error) {
	wi := record.WorkingInterpretation

	order := make([]selector.OrderEntry, 0, len(wi.ValueOrder))
	for name, idx := range wi.ValueOrder {
		order = append(order, selector.OrderEntry{Name: name, Index: idx})
	}

	seeds := make([]selector.Seed, 0, len(record.ValueConcepts)+len(wi.Values))
	for _, c := range record.ValueConcepts {
		seeds = append(seeds, selector.Seed{ConceptName: c.Name, Ref: c.Ref})
	}
	for _, c := range wi.Values {
		seeds = append(seeds, selector.Seed{ConceptName: c.Name, Ref: c.Ref})
	}

	for _, entry := range order {
		source := entry.Name
		if spec, ok := wi.ValueSelectors[entry.Name]; ok && spec.SourceConcept != "" {
			source = spec.SourceConcept
		}
		found := false
		for _, s := range seeds {
			if s.ConceptName == source {
				found = true
				break
			}
		}
		if !found {
			inf.log.Warn("MVP: value source not found, slot left absent", "entry", entry.Name, "source", source)
		}
	}

	values, err := selector.BuildValues(order, wi.ValueSelectors, seeds, resolver)
	if err != nil {
		return nil, inf.fail(core.NewError(err, core.CodeSelection, nil).WithStep("MVP"))
	}

	inf.log.Debug("MVP: built input combinations", "count", len(values.Items))
	inf.Status = StatusMVPDone
	return values, nil
}

// TVA implements spec §4.6: invoke composed for every leaf dict MVP
// produced, collecting an isomorphic result reference. A per-leaf failure
// is fatal unless opts.BestEffort is set, in which case the failing leaf
// holds an error marker and execution continues (spec §4.6 "an implementer
// may offer a configurable best-effort mode").
func (inf *Inference) TVA(composed ComposedFunc, values *reference.Ref, opts Options) (*reference.Ref, error) {
	items := make([]*reference.Ref, 0, len(values.Items))
	for i, dict := range values.Items {
		result, err := composed(dict.AsMap())
		if err != nil {
			if opts.BestEffort {
				inf.log.Warn("TVA: leaf failed in best-effort mode", "index", i, "error", err.Error())
				items = append(items, reference.Leaf(map[string]any{"error": err.Error()}))
				continue
			}
			return nil, inf.fail(core.NewError(err, core.CodeExecution, nil).
				WithStep("TVA").WithInputKey(fmt.Sprintf("%d", i)))
		}
		items = append(items, shapeResult(result, opts))
	}
	inf.Status = StatusTVADone
	return &reference.Ref{Kind: reference.KindList, Items: items}, nil
}

// shapeResult implements spec §4.6's create_axis_on_list_output flag: when
// set and the leaf result is itself a list, the list becomes a new axis
// (one Ref item per element) rather than a single opaque leaf value.
func shapeResult(result any, opts Options) *reference.Ref {
	if opts.CreateAxisOnListOutput {
		if list, ok := result.([]any); ok {
			items := make([]*reference.Ref, len(list))
			for i, v := range list {
				items[i] = reference.Leaf(v)
			}
			return &reference.Ref{Kind: reference.KindList, Items: items}
		}
	}
	return reference.Leaf(result)
}

// Run executes the fixed five-step sequence once for record (spec §2):
// IWI, then MFP and MVP (order immaterial - both must finish before TVA),
// then TVA. The returned reference's leaves are wrapped typed strings (or
// lists thereof), ready to persist back into the target concept's
// reference, or nil alongside a non-nil error if the inference failed
// (no partial-result commit, spec §7).
func Run(record Record, registry paradigm.Registry, b *body.Body, opts Options, log logger.Logger) (*reference.Ref, error) {
	inf := New(log)

	if err := inf.BindBaseDir(b); err != nil {
		return nil, err
	}

	p, err := inf.IWI(record, registry)
	if err != nil {
		return nil, err
	}

	composed, err := inf.MFP(p, b)
	if err != nil {
		return nil, err
	}

	values, err := inf.MVP(record, b)
	if err != nil {
		return nil, err
	}

	result, err := inf.TVA(composed, values, opts)
	if err != nil {
		return nil, err
	}

	inf.Status = StatusComplete
	return result, nil
}
