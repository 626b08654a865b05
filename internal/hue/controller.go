// Package hue adapts a Hue bridge (v1 REST API) to the bridge.Controller
// interface.
package hue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/huemqtt/internal/bridge"
	"github.com/dokzlo13/huemqtt/internal/config"
	"github.com/dokzlo13/huemqtt/internal/entity"
)

// Controller reads and writes lights and groups on a Hue bridge.
type Controller struct {
	client *Client
}

// New creates a controller for the bridge described by cfg. No request is
// made until the first call.
func New(cfg config.HueConfig) *Controller {
	return &Controller{
		client: NewClient(cfg.Address(), cfg.Username, cfg.Timeout.Duration()),
	}
}

// Ping checks that the bridge answers.
func (c *Controller) Ping(ctx context.Context) error {
	cfg, err := c.client.Config(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", bridge.ErrConnection, err)
	}
	log.Info().
		Str("address", c.client.address).
		Str("name", cfg.Name).
		Str("api_version", cfg.APIVersion).
		Msg("Connected to Hue bridge")
	return nil
}

// Close releases the HTTP client's idle connections.
func (c *Controller) Close() error {
	return c.client.Close()
}

// ListLights returns every light ordered by id.
func (c *Controller) ListLights(ctx context.Context) ([]entity.Entity, error) {
	return c.list(ctx, "lights", lightEntity)
}

// ListGroups returns every group ordered by id.
func (c *Controller) ListGroups(ctx context.Context) ([]entity.Entity, error) {
	return c.list(ctx, "groups", groupEntity)
}

func (c *Controller) list(ctx context.Context, path string, decode func(string, json.RawMessage) (entity.Entity, error)) ([]entity.Entity, error) {
	raw, err := c.client.Resources(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", bridge.ErrConnection, path, err)
	}

	out := make([]entity.Entity, 0, len(raw))
	for key, data := range raw {
		e, err := decode(key, data)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetLight looks a light up in the bridge's light list. The single-resource
// endpoint answers an unknown id with an error body, not a status code.
func (c *Controller) GetLight(ctx context.Context, id int) (entity.Entity, bool, error) {
	lights, err := c.ListLights(ctx)
	if err != nil {
		return entity.Entity{}, false, err
	}
	return find(lights, id)
}

// GetGroup looks a group up in the bridge's group list.
func (c *Controller) GetGroup(ctx context.Context, id int) (entity.Entity, bool, error) {
	groups, err := c.ListGroups(ctx)
	if err != nil {
		return entity.Entity{}, false, err
	}
	return find(groups, id)
}

// SaveLight writes the changed keys of light and returns the light as the
// bridge reports it afterwards.
func (c *Controller) SaveLight(ctx context.Context, light entity.Entity) (entity.Entity, error) {
	if err := c.write(ctx, light, fmt.Sprintf("lights/%d/state", light.ID)); err != nil {
		return entity.Entity{}, err
	}
	return c.reread(ctx, light, c.GetLight)
}

// SaveGroup writes the changed keys of group as a group action and returns
// the group as the bridge reports it afterwards.
func (c *Controller) SaveGroup(ctx context.Context, group entity.Entity) (entity.Entity, error) {
	if err := c.write(ctx, group, fmt.Sprintf("groups/%d/action", group.ID)); err != nil {
		return entity.Entity{}, err
	}
	return c.reread(ctx, group, c.GetGroup)
}

func (c *Controller) write(ctx context.Context, e entity.Entity, path string) error {
	body := writeBody(e)
	if len(body) == 0 {
		return nil
	}

	if err := c.client.SetState(ctx, path, body); err != nil {
		return writeError(e.Kind, e.ID, err)
	}

	log.Debug().
		Str("kind", string(e.Kind)).
		Int("id", e.ID).
		Interface("state", body).
		Msg("Applied state")
	return nil
}

func (c *Controller) reread(ctx context.Context, e entity.Entity, get func(context.Context, int) (entity.Entity, bool, error)) (entity.Entity, error) {
	saved, found, err := get(ctx, e.ID)
	if err != nil {
		return entity.Entity{}, err
	}
	if !found {
		return entity.Entity{}, fmt.Errorf("%w: %s %d", bridge.ErrNotFound, e.Kind, e.ID)
	}
	return saved, nil
}

func find(entities []entity.Entity, id int) (entity.Entity, bool, error) {
	for _, e := range entities {
		if e.ID == id {
			return e, true, nil
		}
	}
	return entity.Entity{}, false, nil
}

// writeError classifies a failed write: a deleted resource is error type 3.
func writeError(kind entity.Kind, id int, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Type == errTypeNotAvailable {
		return fmt.Errorf("%w: %s %d: %w", bridge.ErrNotFound, kind, id, err)
	}
	return fmt.Errorf("%w: %s %d: %w", bridge.ErrWrite, kind, id, err)
}
