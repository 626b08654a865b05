package bridge

import (
	"fmt"
	"time"

	"github.com/dokzlo13/huemqtt/internal/entity"
	"github.com/dokzlo13/huemqtt/internal/mqtt"
)

// Publisher announces entity state on the bus as retained QoS 2 messages.
type Publisher struct {
	bus    Bus
	topics mqtt.Topics
	now    func() time.Time
}

// NewPublisher creates a publisher below the given topic layout. A nil clock
// defaults to time.Now.
func NewPublisher(bus Bus, topics mqtt.Topics, now func() time.Time) *Publisher {
	if now == nil {
		now = time.Now
	}
	return &Publisher{bus: bus, topics: topics, now: now}
}

// PublishLight publishes a light to <base>/light/<id>.
func (p *Publisher) PublishLight(light entity.Entity) error {
	return p.send(p.topics.Light(light.ID), light)
}

// PublishGroup publishes a group to <base>/group/<sanitized name>.
func (p *Publisher) PublishGroup(group entity.Entity) error {
	return p.send(p.topics.Group(group.Name), group)
}

// Publish dispatches on the entity kind.
func (p *Publisher) Publish(e entity.Entity) error {
	switch e.Kind {
	case entity.KindLight:
		return p.PublishLight(e)
	case entity.KindGroup:
		return p.PublishGroup(e)
	default:
		return fmt.Errorf("unknown entity kind %q", e.Kind)
	}
}

func (p *Publisher) send(topic string, e entity.Entity) error {
	payload, err := e.Payload(p.now())
	if err != nil {
		return fmt.Errorf("encode %s %d: %w", e.Kind, e.ID, err)
	}
	if err := p.bus.Publish(topic, payload, mqtt.QoSExactlyOnce, true); err != nil {
		return fmt.Errorf("%w: publish %s: %w", ErrConnection, topic, err)
	}
	return nil
}
