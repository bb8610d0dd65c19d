package flow

import (
	"slices"
	"strings"
)

// Kind is the node type. The set is closed per deployment: every kind the
// editor offers is listed in the registry below.
type Kind string

// Built-in node kinds.
const (
	KindMessage  Kind = "message"
	KindCheck    Kind = "check"
	KindDelay    Kind = "delay"
	KindSplit    Kind = "split"
	KindInput    Kind = "input"
	KindProcess  Kind = "process"
	KindDecision Kind = "decision"
	KindOutput   Kind = "output"
)

// KindSpec describes the fixed properties of a node kind.
type KindSpec struct {
	Title string // Toolbar/legend title
	Size  Size   // Fixed box size used for hit-testing and edge anchors
	// FanOut caps the number of outgoing edges. Zero means uncapped.
	FanOut int
	Color  string // Advisory fill color (hex)
}

var kindOrder = []Kind{
	KindMessage,
	KindCheck,
	KindDelay,
	KindSplit,
	KindInput,
	KindProcess,
	KindDecision,
	KindOutput,
}

var registry = map[Kind]KindSpec{
	KindMessage:  {Title: "Message", Size: Size{Width: 150, Height: 44}, Color: "#ff8c00"},
	KindCheck:    {Title: "Check", Size: Size{Width: 150, Height: 44}, Color: "#32cd32"},
	KindDelay:    {Title: "Delay", Size: Size{Width: 150, Height: 44}, Color: "#1e90ff"},
	KindSplit:    {Title: "Split", Size: Size{Width: 150, Height: 44}, FanOut: 2, Color: "#20b2aa"},
	KindInput:    {Title: "Input", Size: Size{Width: 150, Height: 40}, Color: "#ffffff"},
	KindProcess:  {Title: "Process", Size: Size{Width: 150, Height: 40}, Color: "#ffffff"},
	KindDecision: {Title: "Decision", Size: Size{Width: 160, Height: 60}, FanOut: 2, Color: "#fde68a"},
	KindOutput:   {Title: "Output", Size: Size{Width: 150, Height: 40}, Color: "#ffffff"},
}

// aliases maps alternative spellings (including the generic-* names used by
// older saved diagrams) onto registry kinds.
var aliases = map[string]Kind{
	"default":          KindProcess,
	"generic-input":    KindInput,
	"generic-process":  KindProcess,
	"generic-decision": KindDecision,
	"generic-output":   KindOutput,
}

// Kinds returns the registered kinds in toolbar order.
func Kinds() []Kind { return slices.Clone(kindOrder) }

// ParseKind resolves a kind name or alias. Matching is case-insensitive.
func ParseKind(s string) (Kind, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	if k, ok := aliases[name]; ok {
		return k, true
	}
	k := Kind(name)
	_, ok := registry[k]
	return k, ok
}

// Canonical maps an alias onto its registry kind. Other kinds, known or
// not, are returned unchanged.
func (k Kind) Canonical() Kind {
	if c, ok := aliases[strings.ToLower(string(k))]; ok {
		return c
	}
	return k
}

// Known reports whether k, or the kind it aliases, is in the registry.
func (k Kind) Known() bool {
	_, ok := registry[k.Canonical()]
	return ok
}

// Spec returns the registry entry for k, resolving aliases. Unknown kinds
// get the generic process geometry and no fan-out cap.
func (k Kind) Spec() KindSpec {
	if s, ok := registry[k.Canonical()]; ok {
		return s
	}
	s := registry[KindProcess]
	s.Title = string(k)
	return s
}

// Size returns the fixed box size for k.
func (k Kind) Size() Size { return k.Spec().Size }

// FanOut returns the outgoing-edge cap for k, or 0 when uncapped.
func (k Kind) FanOut() int { return k.Spec().FanOut }

// DefaultLabel is the label given to a freshly added node of kind k.
func DefaultLabel(k Kind) string { return string(k) + " node" }
