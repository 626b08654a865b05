// Package entity defines the light and group snapshots exchanged between the
// Hue controller and the MQTT bus.
package entity

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"
)

// Kind identifies the namespace an entity id belongs to.
type Kind string

// Entity kinds
const (
	KindLight Kind = "light"
	KindGroup Kind = "group"
)

// TimeKey is the reserved attribute stamped onto every published state.
const TimeKey = "time"

// Attributes maps attribute names to scalar values as decoded from JSON
// (bool, float64, string) or short lists of them (e.g. xy).
type Attributes map[string]any

// Clone returns a shallow copy of the attribute map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Entity is a snapshot of a light or group as reported by the controller.
type Entity struct {
	Kind Kind
	ID   int
	Name string

	// State is the live, controller-owned state. It is the only part compared
	// by change detection.
	State Attributes

	// Extra carries metadata (type, model...) that is published but never diffed.
	Extra Attributes

	// Changed lists the State keys overwritten by Merge, sorted.
	Changed []string
}

// Merge returns a copy of e with every key of patch written onto its State.
// Unknown keys are added as-is.
func Merge(e Entity, patch Attributes) Entity {
	out := e
	out.State = e.State.Clone()
	if out.State == nil {
		out.State = make(Attributes, len(patch))
	}
	out.Extra = e.Extra.Clone()
	out.Changed = make([]string, 0, len(patch))
	for k, v := range patch {
		out.State[k] = v
		out.Changed = append(out.Changed, k)
	}
	sort.Strings(out.Changed)
	return out
}

// Equal reports whether two attribute values are identical.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// Flatten merges state and extra into one map, stamped with now under TimeKey.
// Extra wins on name collisions.
func (e Entity) Flatten(now time.Time) Attributes {
	out := make(Attributes, len(e.State)+len(e.Extra)+1)
	for k, v := range e.State {
		out[k] = v
	}
	out[TimeKey] = now.UnixMilli()
	for k, v := range e.Extra {
		out[k] = v
	}
	return out
}

// Payload serializes the flattened entity as a JSON object.
func (e Entity) Payload(now time.Time) ([]byte, error) {
	return json.Marshal(e.Flatten(now))
}
