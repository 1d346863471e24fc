package compose

import (
	"strings"

	"github.com/sghaida/compbridge/contract"
)

// CreationPolicy says whether a part instance is shared.
type CreationPolicy int

const (
	// Any leaves the decision to the host; the bridge treats it as Shared.
	Any CreationPolicy = iota

	// Shared parts have one instance per container.
	Shared

	// NonShared parts get a new instance for every request.
	NonShared
)

var policyNames = map[CreationPolicy]string{Any: "Any", Shared: "Shared", NonShared: "NonShared"}

// String returns the policy name.
func (p CreationPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "CreationPolicy(" + itoa(int(p)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (p CreationPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case
// insensitive and an empty string means Any.
func (p *CreationPolicy) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*p = Any
		return nil
	}
	for k, name := range policyNames {
		if strings.EqualFold(name, s) {
			*p = k
			return nil
		}
	}
	return contract.ArgumentError{Name: "creationPolicy", Reason: "unknown policy " + s}
}

// CreationPolicyOf reads CreationPolicyKey from md. Values may be a
// CreationPolicy or its name; anything else is Any.
func CreationPolicyOf(md contract.Metadata) CreationPolicy {
	switch v := md[contract.CreationPolicyKey].(type) {
	case CreationPolicy:
		return v
	case string:
		var p CreationPolicy
		if err := p.UnmarshalText([]byte(v)); err == nil {
			return p
		}
	}
	return Any
}

// Cardinality is how many exports an import accepts.
type Cardinality int

const (
	// ExactlyOne requires a single export.
	ExactlyOne Cardinality = iota

	// ZeroOrOne accepts a missing export.
	ZeroOrOne

	// ZeroOrMore accepts any number of exports.
	ZeroOrMore
)

var cardinalityNames = map[Cardinality]string{
	ExactlyOne: "ExactlyOne",
	ZeroOrOne:  "ZeroOrOne",
	ZeroOrMore: "ZeroOrMore",
}

// String returns the cardinality name.
func (c Cardinality) String() string {
	if s, ok := cardinalityNames[c]; ok {
		return s
	}
	return "Cardinality(" + itoa(int(c)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (c Cardinality) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case
// insensitive and an empty string means ExactlyOne.
func (c *Cardinality) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*c = ExactlyOne
		return nil
	}
	for k, name := range cardinalityNames {
		if strings.EqualFold(name, s) {
			*c = k
			return nil
		}
	}
	return contract.ArgumentError{Name: "cardinality", Reason: "unknown cardinality " + s}
}
