// Package params models the optimizer's command-line configuration.
//
// A Parameters value holds an ordered set of global flags plus exactly one
// mode. Rendering emits global flags in insertion order, then the mode name,
// then the mode's own flags; the optimizer parses its command line positionally
// so this order is part of the contract.
package params

import (
	"fmt"
	"strings"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

// TimeLimitFlag is the optimizer flag carrying its search time budget.
const TimeLimitFlag = "--egg-time-limit"

type entryKind int

const (
	kindFlag entryKind = iota
	kindValued
)

// Entry is either a presence-only flag or a flag with a value.
type Entry struct {
	Name  string
	Value string
	kind  entryKind
}

func Flag(name string) Entry {
	return Entry{Name: name, kind: kindFlag}
}

func Valued(name, value string) Entry {
	return Entry{Name: name, Value: value, kind: kindValued}
}

func (e Entry) HasValue() bool {
	return e.kind == kindValued
}

func (e Entry) tokens() []string {
	if e.kind == kindValued {
		return []string{e.Name, e.Value}
	}
	return []string{e.Name}
}

func (e Entry) String() string {
	if e.kind == kindValued {
		return e.Name + "=" + e.Value
	}
	return e.Name
}

// Set is an insertion-ordered flag set. Overwriting an existing name keeps its
// original position.
type Set struct {
	entries []Entry
	index   map[string]int
}

func (s *Set) Put(e Entry) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[e.Name]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.Name] = len(s.entries)
	s.entries = append(s.entries, e)
}

func (s *Set) SetFlag(name string) {
	s.Put(Flag(name))
}

func (s *Set) SetValue(name, value string) {
	s.Put(Valued(name, value))
}

func (s *Set) Get(name string) (Entry, bool) {
	if s == nil || s.index == nil {
		return Entry{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Set) Clone() Set {
	var out Set
	if s == nil {
		return out
	}
	for _, e := range s.entries {
		out.Put(e)
	}
	return out
}

// Tokens renders the set as command-line tokens: each name, followed by its
// value when it has one.
func (s *Set) Tokens() []string {
	out := make([]string, 0, s.Len()*2)
	if s == nil {
		return out
	}
	for _, e := range s.entries {
		out = append(out, e.tokens()...)
	}
	return out
}

// Mode is the optimizer's positional mode keyword and its nested flags.
type Mode struct {
	Name   string
	Params Set
}

// Parameters is the full optimizer configuration: global flags and a mode.
type Parameters struct {
	Global Set
	mode   *Mode
}

// New returns Parameters with the given mode set.
func New(modeName string) Parameters {
	var p Parameters
	p.SetMode(modeName)
	return p
}

// SetMode replaces the mode and returns it so its flags can be configured.
func (p *Parameters) SetMode(name string) *Mode {
	p.mode = &Mode{Name: strings.TrimSpace(name)}
	return p.mode
}

// Mode returns the configured mode, or nil if none is set.
func (p *Parameters) Mode() *Mode {
	if p.mode == nil || p.mode.Name == "" {
		return nil
	}
	return p.mode
}

func (p *Parameters) HasMode() bool {
	return p.Mode() != nil
}

func (p *Parameters) Clone() Parameters {
	out := Parameters{Global: p.Global.Clone()}
	if p.mode != nil {
		out.mode = &Mode{Name: p.mode.Name, Params: p.mode.Params.Clone()}
	}
	return out
}

// WithTimeLimit returns a copy whose time limit flag is value. The receiver is
// not modified.
func (p *Parameters) WithTimeLimit(value string) Parameters {
	out := p.Clone()
	out.Global.SetValue(TimeLimitFlag, value)
	return out
}

// Render produces the optimizer's flat argument list. Rendering without a mode
// is a configuration error.
func (p *Parameters) Render() ([]string, error) {
	mode := p.Mode()
	if mode == nil {
		return nil, domain.ErrModeMissing
	}
	out := p.Global.Tokens()
	out = append(out, mode.Name)
	out = append(out, mode.Params.Tokens()...)
	return out, nil
}

func (p *Parameters) String() string {
	tokens, err := p.Render()
	if err != nil {
		return strings.Join(p.Global.Tokens(), " ") + " <no mode>"
	}
	return strings.Join(tokens, " ")
}

// ParseInto adds the options in raw to target. raw is split on single spaces;
// a token containing one '=' becomes a valued entry and a token without '='
// a presence-only flag. A token with more than one '=' or an empty name is
// rejected rather than guessed at, and target is left untouched. Parsing only
// adds or overwrites.
func ParseInto(target *Set, raw string) error {
	var parsed Set
	for _, token := range strings.Split(raw, " ") {
		if token == "" {
			continue
		}
		switch strings.Count(token, "=") {
		case 0:
			parsed.SetFlag(token)
		case 1:
			key, value, _ := strings.Cut(token, "=")
			if key == "" {
				return fmt.Errorf("parse option %q: empty name", token)
			}
			parsed.SetValue(key, value)
		default:
			return fmt.Errorf("parse option %q: more than one '='", token)
		}
	}
	for _, e := range parsed.entries {
		target.Put(e)
	}
	return nil
}
