package bridge

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dokzlo13/huemqtt/internal/entity"
)

type write struct {
	kind  entity.Kind
	id    int
	state entity.Attributes
}

// fakeController is an in-memory controller. Writes replace the stored state
// and are recorded in order.
type fakeController struct {
	mu     sync.Mutex
	lights map[int]entity.Entity
	groups map[int]entity.Entity
	writes []write

	listLightsErr error
	listGroupsErr error
	saveErr       error

	// gate, when set, is received from before every save completes
	gate chan struct{}
}

func newFakeController() *fakeController {
	return &fakeController{
		lights: make(map[int]entity.Entity),
		groups: make(map[int]entity.Entity),
	}
}

func (f *fakeController) addLight(id int, state entity.Attributes) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lights[id] = entity.Entity{Kind: entity.KindLight, ID: id, State: state, Extra: entity.Attributes{"type": "Extended color light"}}
}

func (f *fakeController) addGroup(id int, name string, state entity.Attributes) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[id] = entity.Entity{Kind: entity.KindGroup, ID: id, Name: name, State: state, Extra: entity.Attributes{"name": name}}
}

func (f *fakeController) setState(kind entity.Kind, id int, key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.lights
	if kind == entity.KindGroup {
		m = f.groups
	}
	e := m[id]
	e.State = e.State.Clone()
	e.State[key] = value
	m[id] = e
}

func (f *fakeController) Writes() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]write(nil), f.writes...)
}

func sorted(m map[int]entity.Entity) []entity.Entity {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]entity.Entity, 0, len(ids))
	for _, id := range ids {
		e := m[id]
		e.State = e.State.Clone()
		out = append(out, e)
	}
	return out
}

func (f *fakeController) ListLights(context.Context) ([]entity.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listLightsErr != nil {
		return nil, f.listLightsErr
	}
	return sorted(f.lights), nil
}

func (f *fakeController) ListGroups(context.Context) ([]entity.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listGroupsErr != nil {
		return nil, f.listGroupsErr
	}
	return sorted(f.groups), nil
}

func (f *fakeController) GetLight(_ context.Context, id int) (entity.Entity, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.lights[id]
	e.State = e.State.Clone()
	return e, ok, nil
}

func (f *fakeController) GetGroup(_ context.Context, id int) (entity.Entity, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.groups[id]
	e.State = e.State.Clone()
	return e, ok, nil
}

func (f *fakeController) SaveLight(ctx context.Context, e entity.Entity) (entity.Entity, error) {
	return f.save(ctx, f.lights, e)
}

func (f *fakeController) SaveGroup(ctx context.Context, e entity.Entity) (entity.Entity, error) {
	return f.save(ctx, f.groups, e)
}

func (f *fakeController) save(ctx context.Context, m map[int]entity.Entity, e entity.Entity) (entity.Entity, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return entity.Entity{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return entity.Entity{}, f.saveErr
	}
	f.writes = append(f.writes, write{kind: e.Kind, id: e.ID, state: e.State.Clone()})
	stored := m[e.ID]
	stored.State = e.State.Clone()
	m[e.ID] = stored
	stored.State = stored.State.Clone()
	return stored, nil
}

type message struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

// fakeBus records publishes and keeps subscribed handlers.
type fakeBus struct {
	mu         sync.Mutex
	messages   []message
	handlers   map[string]func(string, []byte) error
	publishErr error
	subErr     error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]func(string, []byte) error)}
}

func (b *fakeBus) Publish(topic string, payload []byte, qos byte, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.messages = append(b.messages, message{topic, string(payload), qos, retained})
	return nil
}

func (b *fakeBus) Subscribe(topic string, _ byte, handler func(string, []byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subErr != nil {
		return b.subErr
	}
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBus) Messages() []message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]message(nil), b.messages...)
}

func (b *fakeBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = nil
}

var errBoom = errors.New("boom")
