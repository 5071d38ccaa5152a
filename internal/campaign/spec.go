// Package campaign runs named experiment modes described by a YAML campaign
// spec. Each mode optimizes, evaluates or traces one benchmark set with a
// shared optimizer configuration.
package campaign

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/params"
)

const SpecSchemaV1 = "eqsat.campaign.v1"

const (
	KindOptimize = "optimize"
	KindEvaluate = "evaluate"
	KindTrace    = "trace"
)

type Spec struct {
	Schema string     `yaml:"schema"`
	Name   string     `yaml:"name"`
	Params ParamsSpec `yaml:"params"`
	// RequireTraceCollector fails every mode early when the trace collector
	// is not on PATH.
	RequireTraceCollector bool   `yaml:"require_trace_collector,omitempty"`
	Modes                 []Mode `yaml:"modes"`
}

// ParamsSpec holds optimizer options in the CLI's "--name=value --flag" form.
type ParamsSpec struct {
	Mode        string `yaml:"mode"`
	ModeOptions string `yaml:"mode_options,omitempty"`
	Options     string `yaml:"options,omitempty"`
}

// Mode is one runnable entry. Path fields may use {driver} and {out}, which
// expand to the driver directory and the campaign output base.
type Mode struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Jobs int    `yaml:"jobs,omitempty"`

	BenchSet string `yaml:"bench_set,omitempty"`
	RuleSet  string `yaml:"rule_set,omitempty"`
	Output   string `yaml:"output,omitempty"`
	Domain   string `yaml:"domain,omitempty"`
	Refine   bool   `yaml:"refine,omitempty"`
	TraceDir string `yaml:"trace_dir,omitempty"`
	LogDir   string `yaml:"log_dir,omitempty"`

	Candidates   string `yaml:"candidates,omitempty"`
	ReferenceSet string `yaml:"reference_set,omitempty"`
}

func ParseSpec(input []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(input, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode campaign: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func (s Spec) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(s.Schema) != SpecSchemaV1 {
		v.Add(fmt.Sprintf("schema must be %q", SpecSchemaV1))
	}
	if strings.TrimSpace(s.Name) == "" {
		v.Add("name is required")
	}
	if _, err := s.Params.Build(); err != nil {
		v.Add("params: " + err.Error())
	}
	if len(s.Modes) == 0 {
		v.Add("modes must be non-empty")
	}

	seen := make(map[string]struct{}, len(s.Modes))
	for i, m := range s.Modes {
		prefix := fmt.Sprintf("modes[%d]", i)
		name := strings.TrimSpace(m.Name)
		if name == "" {
			v.Add(prefix + ".name is required")
		} else if _, ok := seen[name]; ok {
			v.Add(fmt.Sprintf("%s.name must be unique (duplicate %q)", prefix, name))
		}
		seen[name] = struct{}{}
		if m.Jobs < 0 {
			v.Add(prefix + ".jobs must be >= 0")
		}
		validateMode(v, prefix, m)
	}
	return v.OrNil()
}

func validateMode(v *ValidationError, prefix string, m Mode) {
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			v.Add(fmt.Sprintf("%s.%s is required for %s", prefix, field, m.Kind))
		}
	}
	switch m.Kind {
	case KindOptimize:
		required("bench_set", m.BenchSet)
		required("output", m.Output)
		if _, err := benchset.ParseDomain(m.Domain); err != nil {
			v.Add(prefix + ".domain: " + err.Error())
		}
		if m.Refine && m.LogDir != "" {
			v.Add(prefix + ": refine and log_dir are mutually exclusive")
		}
	case KindEvaluate:
		required("candidates", m.Candidates)
		required("reference_set", m.ReferenceSet)
	case KindTrace:
		required("bench_set", m.BenchSet)
		required("output", m.Output)
	case "":
		v.Add(prefix + ".kind is required")
	default:
		v.Add(fmt.Sprintf("%s.kind unsupported: %q", prefix, m.Kind))
	}
}

// Build turns the options into optimizer parameters. Mode options go into the
// mode's nested set and options into the global set.
func (p ParamsSpec) Build() (params.Parameters, error) {
	if strings.TrimSpace(p.Mode) == "" {
		return params.Parameters{}, fmt.Errorf("mode is required")
	}
	out := params.New(p.Mode)
	if err := params.ParseInto(&out.Mode().Params, p.ModeOptions); err != nil {
		return params.Parameters{}, fmt.Errorf("mode_options: %w", err)
	}
	if err := params.ParseInto(&out.Global, p.Options); err != nil {
		return params.Parameters{}, fmt.Errorf("options: %w", err)
	}
	return out, nil
}

// Mode returns the named mode.
func (s Spec) Mode(name string) (Mode, error) {
	for _, m := range s.Modes {
		if m.Name == name {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("%w: %q in campaign %s", ErrUnknownMode, name, s.Name)
}

func (s Spec) ModeNames() []string {
	out := make([]string, 0, len(s.Modes))
	for _, m := range s.Modes {
		out = append(out, m.Name)
	}
	return out
}
