package bridge

import (
	"context"

	"github.com/dokzlo13/huemqtt/internal/entity"
)

// Controller is the lighting controller the engine reads from and writes to.
// Get returns ok=false when the id is unknown. Save returns the entity as the
// controller reports it after the write.
type Controller interface {
	ListLights(ctx context.Context) ([]entity.Entity, error)
	GetLight(ctx context.Context, id int) (entity.Entity, bool, error)
	SaveLight(ctx context.Context, light entity.Entity) (entity.Entity, error)

	ListGroups(ctx context.Context) ([]entity.Entity, error)
	GetGroup(ctx context.Context, id int) (entity.Entity, bool, error)
	SaveGroup(ctx context.Context, group entity.Entity) (entity.Entity, error)
}

// Bus is the publish/subscribe transport. The engine borrows it and never
// closes it.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
}
