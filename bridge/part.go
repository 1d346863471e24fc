package bridge

import (
	"strconv"
	"sync"

	"github.com/sghaida/compbridge/compose"
)

// PartState is where a part instance is in its activation.
type PartState int

const (
	// PartCreated: the part exists, no import has been assigned.
	PartCreated PartState = iota

	// PartPrerequisitesAssigned: prerequisite imports are set; the instance
	// is about to be published.
	PartPrerequisitesAssigned

	// PartActivated: the instance is published and visible to other parts.
	PartActivated

	// PartNonPrerequisitesAssigned: every import is set.
	PartNonPrerequisitesAssigned

	// PartComposed: the part's Activate has returned.
	PartComposed
)

var partStateNames = [...]string{"Created", "PrerequisitesAssigned", "Activated", "NonPrerequisitesAssigned", "Composed"}

// String returns the state name.
func (s PartState) String() string {
	if s >= 0 && int(s) < len(partStateNames) {
		return partStateNames[s]
	}
	return "PartState(" + strconv.Itoa(int(s)) + ")"
}

// PartInstance is what the container holds for a catalog part.
type PartInstance struct {
	mu    sync.Mutex
	def   compose.PartDefinition
	part  compose.Part
	state PartState
}

func newPartInstance(def compose.PartDefinition, part compose.Part) *PartInstance {
	return &PartInstance{def: def, part: part}
}

// Definition returns the part's definition.
func (p *PartInstance) Definition() compose.PartDefinition { return p.def }

// Part returns the live part.
func (p *PartInstance) Part() compose.Part { return p.part }

// State returns the current activation state.
func (p *PartInstance) State() PartState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// advance moves from want to next.
func (p *PartInstance) advance(want, next PartState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != want {
		return PartStateError{Want: want, Got: p.state}
	}
	p.state = next
	return nil
}
