package paradigm

import "gopkg.in/yaml.v3"

// InputsSpec splits a paradigm's declared inputs into the two sources the
// inference pipeline draws them from (spec §4.2): vertical inputs are
// compile-time, resolved from the function concept during MFP; horizontal
// inputs are runtime, drawn from value concepts during MVP.
type InputsSpec struct {
	Vertical   []string `json:"vertical,omitempty"   yaml:"vertical,omitempty"`
	Horizontal []string `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
}

// Metadata is a paradigm's human-readable description plus its input
// classification. The loader preserves any keys it doesn't recognize (spec
// §4.2 "the loader preserves extra keys unrecognized at this layer") in
// Extra rather than discarding them.
type Metadata struct {
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Inputs      InputsSpec     `json:"inputs,omitempty"      yaml:"inputs,omitempty"`
	Extra       map[string]any `json:"-"                     yaml:"-"`
}

type metadataAlias struct {
	Description string     `yaml:"description"`
	Inputs      InputsSpec `yaml:"inputs"`
}

// UnmarshalYAML decodes the known fields via metadataAlias, then decodes the
// node again as a generic map to recover anything else present so
// unrecognized keys survive a load instead of being silently dropped.
func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	var alias metadataAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	m.Description = alias.Description
	m.Inputs = alias.Inputs

	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	delete(raw, "description")
	delete(raw, "inputs")
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}
