package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/dokzlo13/huemqtt/internal/entity"
	"github.com/dokzlo13/huemqtt/internal/mqtt"
)

// Command is an inbound write request parsed from a set-topic message.
type Command struct {
	ID     string // correlation id, for logs only
	Kind   entity.Kind
	Target int
	Patch  entity.Attributes
}

// ParseCommand matches topic against the light and then the group set
// pattern and decodes payload as an attribute patch. ok is false when the
// topic is not a set topic at all. Malformed ids and payloads return ErrParse.
func ParseCommand(topics mqtt.Topics, topic string, payload []byte) (cmd Command, ok bool, err error) {
	var segment string
	switch {
	case matchInto(topics, topic, entity.KindLight, &segment):
		cmd.Kind = entity.KindLight
	case matchInto(topics, topic, entity.KindGroup, &segment):
		cmd.Kind = entity.KindGroup
	default:
		return Command{}, false, nil
	}

	id, err := mqtt.ParseID(segment)
	if err != nil {
		return Command{}, true, fmt.Errorf("%w: %s id %q: %v", ErrParse, cmd.Kind, segment, err)
	}
	cmd.Target = id

	var patch entity.Attributes
	if err := json.Unmarshal(payload, &patch); err != nil {
		return Command{}, true, fmt.Errorf("%w: payload: %v", ErrParse, err)
	}
	if patch == nil {
		return Command{}, true, fmt.Errorf("%w: payload must be a JSON object", ErrParse)
	}
	cmd.Patch = patch

	return cmd, true, nil
}

func matchInto(topics mqtt.Topics, topic string, kind entity.Kind, segment *string) bool {
	s, ok := topics.MatchSet(topic, string(kind))
	if ok {
		*segment = s
	}
	return ok
}
