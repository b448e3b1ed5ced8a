// Package wizard drives the multi-step declaration flow as a pure state
// machine. A Session is an immutable value: Apply, Next, Back, AddPhoto and
// RemovePhoto all return a new Session and never mutate their receiver, so
// handlers can load a session, run a transition and persist the result (or
// throw it away on validation failure) without partial state.
package wizard

import (
	"fmt"

	"github.com/Loicqra12/ovpr-api/declaration"
)

// StepID names one wizard step
type StepID string

// Wizard steps. Each flow is an ordered subset of these.
const (
	StepCategory       StepID = "category"
	StepIdentification StepID = "identification"
	StepDescription    StepID = "description"
	StepLocation       StepID = "location"
	StepPolice         StepID = "police"
	StepContact        StepID = "contact"
	StepConfirmation   StepID = "confirmation"
)

// Flow is the per-declaration-type step schema. The three historical wizard
// variants are unified behind these definitions; the state machine itself is
// flow-agnostic.
type Flow struct {
	DeclarationType  string
	Steps            []StepID
	MinPhotos        int
	MaxPhotos        int
	LocationRequired bool
	RewardAllowed    bool
}

var flows = map[string]Flow{
	declaration.TypeLost: {
		DeclarationType:  declaration.TypeLost,
		Steps:            []StepID{StepCategory, StepIdentification, StepDescription, StepLocation, StepContact, StepConfirmation},
		MinPhotos:        0,
		MaxPhotos:        6,
		LocationRequired: true,
		RewardAllowed:    true,
	},
	declaration.TypeFound: {
		DeclarationType:  declaration.TypeFound,
		Steps:            []StepID{StepCategory, StepIdentification, StepDescription, StepLocation, StepContact, StepConfirmation},
		MinPhotos:        1,
		MaxPhotos:        6,
		LocationRequired: true,
	},
	declaration.TypeStolen: {
		DeclarationType: declaration.TypeStolen,
		Steps:           []StepID{StepCategory, StepIdentification, StepDescription, StepLocation, StepPolice, StepContact, StepConfirmation},
		MinPhotos:       0,
		MaxPhotos:       4,
	},
}

// FlowFor returns the flow definition for a declaration type
func FlowFor(declarationType string) (Flow, error) {
	f, ok := flows[declarationType]
	if !ok {
		return Flow{}, fmt.Errorf("unknown declaration type %q", declarationType)
	}
	return f, nil
}

// StepNames returns the flow's steps as plain strings, for storage and for
// clients rendering a progress bar.
func (f Flow) StepNames() []string {
	names := make([]string, len(f.Steps))
	for i, s := range f.Steps {
		names[i] = string(s)
	}
	return names
}
