package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// QoS levels
const (
	QoSAtMostOnce  byte = 0
	QoSAtLeastOnce byte = 1
	QoSExactlyOnce byte = 2
)

// Status payloads published on the status topic.
const (
	StatusOnline  = "1"
	StatusOffline = "0"
)

// Topics builds the topic names used below a base topic.
//
//	topics := mqtt.Topics{Base: "device/hue-bridge"}
//	topics.Light(5)                // device/hue-bridge/light/5
//	topics.Group("Living Room")    // device/hue-bridge/group/living_room
type Topics struct {
	Base string
}

// Status returns the liveness topic.
func (t Topics) Status() string {
	return t.Base + "/status"
}

// Light returns the state topic for a light.
func (t Topics) Light(id int) string {
	return fmt.Sprintf("%s/light/%d", t.Base, id)
}

// Group returns the state topic for a group, derived from its name.
func (t Topics) Group(name string) string {
	return fmt.Sprintf("%s/group/%s", t.Base, SanitizeName(name))
}

// LightSet returns the subscription pattern for light commands.
func (t Topics) LightSet() string {
	return t.Base + "/light/+/set"
}

// GroupSet returns the subscription pattern for group commands.
func (t Topics) GroupSet() string {
	return t.Base + "/group/+/set"
}

// MatchSet checks topic against "<base>/<kind>/+/set" and returns the
// wildcard segment.
func (t Topics) MatchSet(topic, kind string) (string, bool) {
	prefix := t.Base + "/" + kind + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	rest := topic[len(prefix):]
	if !strings.HasSuffix(rest, "/set") {
		return "", false
	}
	segment := strings.TrimSuffix(rest, "/set")
	if strings.Contains(segment, "/") {
		return "", false
	}
	return segment, true
}

// ParseID parses a topic segment as a non-negative entity id.
func ParseID(segment string) (int, error) {
	id, err := strconv.Atoi(segment)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("negative id %d", id)
	}
	return id, nil
}

// SanitizeName lower-cases name and replaces its first space with an
// underscore. Only the first space is replaced.
func SanitizeName(name string) string {
	return strings.ToLower(strings.Replace(name, " ", "_", 1))
}
