package hue

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/amimof/huego"

	"github.com/dokzlo13/huemqtt/internal/bridge"
	"github.com/dokzlo13/huemqtt/internal/entity"
)

// readOnlyKeys are state keys the bridge reports but rejects on write.
var readOnlyKeys = map[string]bool{
	"colormode": true,
	"reachable": true,
	"mode":      true,
	"all_on":    true,
	"any_on":    true,
}

// lightResource decodes a v1 light. State shadows huego.Light.State so the
// raw attributes, zeros included, are kept.
type lightResource struct {
	huego.Light
	State entity.Attributes `json:"state"`
}

// groupResource decodes a v1 group. Action and Flags shadow the typed
// huego.Group state fields.
type groupResource struct {
	huego.Group
	Action entity.Attributes `json:"action"`
	Flags  entity.Attributes `json:"state"`
}

func lightEntity(key string, raw json.RawMessage) (entity.Entity, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("%w: light id %q", bridge.ErrParse, key)
	}

	var l lightResource
	if err := json.Unmarshal(raw, &l); err != nil {
		return entity.Entity{}, fmt.Errorf("%w: light %d: %w", bridge.ErrParse, id, err)
	}
	if l.State == nil {
		l.State = entity.Attributes{}
	}

	return entity.Entity{
		Kind:  entity.KindLight,
		ID:    id,
		Name:  l.Name,
		State: l.State,
		Extra: entity.Attributes{
			"name":             l.Name,
			"type":             l.Type,
			"modelid":          l.ModelID,
			"manufacturername": l.ManufacturerName,
			"uniqueid":         l.UniqueID,
			"swversion":        l.SwVersion,
		},
	}, nil
}

func groupEntity(key string, raw json.RawMessage) (entity.Entity, error) {
	id, err := strconv.Atoi(key)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("%w: group id %q", bridge.ErrParse, key)
	}

	var g groupResource
	if err := json.Unmarshal(raw, &g); err != nil {
		return entity.Entity{}, fmt.Errorf("%w: group %d: %w", bridge.ErrParse, id, err)
	}

	state := entity.Attributes{}
	for k, v := range g.Action {
		state[k] = v
	}
	for k, v := range g.Flags {
		state[k] = v
	}

	lights := make([]any, 0, len(g.Lights))
	for _, light := range g.Lights {
		lights = append(lights, light)
	}

	return entity.Entity{
		Kind:  entity.KindGroup,
		ID:    id,
		Name:  g.Name,
		State: state,
		Extra: entity.Attributes{
			"name":   g.Name,
			"type":   g.Type,
			"class":  g.Class,
			"lights": lights,
		},
	}, nil
}

// writeBody is the request for e: every key Merge changed, values untouched,
// minus the keys the bridge never accepts.
func writeBody(e entity.Entity) map[string]any {
	body := make(map[string]any, len(e.Changed))
	for _, key := range e.Changed {
		if readOnlyKeys[key] {
			continue
		}
		body[key] = e.State[key]
	}
	return body
}
