package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dokzlo13/huemqtt/internal/entity"
	"github.com/dokzlo13/huemqtt/internal/mqtt"
)

// DefaultPollInterval is the pause between the end of one poll cycle and the
// start of the next.
const DefaultPollInterval = time.Second

// Options configures an Engine.
type Options struct {
	BaseTopic    string
	PollInterval time.Duration

	// WriteRateLimit caps controller writes per second (0 = unlimited).
	WriteRateLimit float64

	// Clock stamps published state; defaults to time.Now.
	Clock func() time.Time
}

// Engine synchronizes controller state with the bus. It owns the entity store
// and the command queue; the controller and the bus are borrowed.
type Engine struct {
	controller Controller
	bus        Bus
	topics     mqtt.Topics

	store     *Store
	publisher *Publisher
	queue     *Queue
	limiter   *rate.Limiter
	interval  time.Duration

	// reportMu makes detect+publish atomic across the poll loop and the queue
	reportMu sync.Mutex

	// commands run under cmdCtx, which outlives Run so queued work can drain
	cmdCtx    context.Context
	cmdCancel context.CancelFunc
	stopping  atomic.Bool
}

// New creates an engine. Nothing runs until Run is called.
func New(controller Controller, bus Bus, opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	topics := mqtt.Topics{Base: opts.BaseTopic}
	e := &Engine{
		controller: controller,
		bus:        bus,
		topics:     topics,
		store:      NewStore(),
		publisher:  NewPublisher(bus, topics, opts.Clock),
		interval:   opts.PollInterval,
	}
	e.cmdCtx, e.cmdCancel = context.WithCancel(context.Background())
	if opts.WriteRateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.WriteRateLimit), max(1, int(opts.WriteRateLimit)))
	}
	e.queue = NewQueue(e.runCommand)
	return e
}

// Store returns the engine's last-known-state cache.
func (e *Engine) Store() *Store {
	return e.store
}

// Run subscribes to the set topics and polls the controller until ctx is
// cancelled. The first poll runs immediately. Cancelling ctx stops polling
// only; queued commands keep running until Shutdown.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Subscribe(); err != nil {
		return err
	}

	log.Info().
		Str("base_topic", e.topics.Base).
		Dur("poll_interval", e.interval).
		Msg("Bridge started")

	for {
		e.Poll(ctx)

		timer := time.NewTimer(e.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Bridge stopping")
			return nil
		case <-timer.C:
		}
	}
}

// Subscribe registers the router for light and group set topics.
func (e *Engine) Subscribe() error {
	for _, pattern := range []string{e.topics.LightSet(), e.topics.GroupSet()} {
		if err := e.bus.Subscribe(pattern, mqtt.QoSExactlyOnce, e.HandleMessage); err != nil {
			return fmt.Errorf("%w: subscribe %s: %w", ErrConnection, pattern, err)
		}
		log.Debug().Str("topic", pattern).Msg("Subscribed")
	}
	return nil
}

// Poll runs one cycle: all lights, then all groups, each in the order the
// controller returned them. Fetch failures are logged and do not stop the cycle.
func (e *Engine) Poll(ctx context.Context) {
	lights, err := e.controller.ListLights(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch lights")
	}
	for _, light := range lights {
		light.Kind = entity.KindLight
		e.report(light)
	}

	groups, err := e.controller.ListGroups(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch groups")
	}
	for _, group := range groups {
		group.Kind = entity.KindGroup
		e.report(group)
	}

	log.Trace().
		Int("lights", len(lights)).
		Int("groups", len(groups)).
		Int("known", e.store.Len()).
		Msg("Poll cycle done")
}

// HandleMessage is the bus callback for set topics. Malformed commands are
// logged and returned as ErrParse; they never reach the queue.
func (e *Engine) HandleMessage(topic string, payload []byte) error {
	cmd, ok, err := ParseCommand(e.topics, topic, payload)
	if !ok {
		log.Debug().Str("topic", topic).Msg("Ignoring message on unknown topic")
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Rejected command")
		return err
	}
	if e.stopping.Load() {
		log.Warn().Str("topic", topic).Msg("Shutting down, dropping command")
		return nil
	}

	cmd.ID = uuid.NewString()
	log.Debug().
		Str("command_id", cmd.ID).
		Str("kind", string(cmd.Kind)).
		Int("id", cmd.Target).
		Interface("patch", cmd.Patch).
		Msg("Command queued")

	e.queue.Enqueue(cmd)
	return nil
}

// Wait blocks until every queued command has completed or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	return e.queue.Wait(ctx)
}

// Shutdown stops accepting commands and waits for the queued ones to finish.
// When ctx expires first, the command in flight is cancelled and the rest fail
// fast.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.stopping.Store(true)

	err := e.queue.Wait(ctx)
	e.cmdCancel()
	return err
}

// Apply executes one command synchronously: read the target, merge the patch,
// write it back and publish the controller's post-write state.
func (e *Engine) Apply(ctx context.Context, cmd Command) error {
	current, found, err := e.get(ctx, cmd.Kind, cmd.Target)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s %d", ErrNotFound, cmd.Kind, cmd.Target)
	}

	merged := entity.Merge(current, cmd.Patch)

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	saved, err := e.save(ctx, merged)
	if err != nil {
		return err
	}
	saved.Kind = cmd.Kind
	e.report(saved)
	return nil
}

func (e *Engine) runCommand(cmd Command) {
	logger := log.With().
		Str("command_id", cmd.ID).
		Str("kind", string(cmd.Kind)).
		Int("id", cmd.Target).
		Logger()

	err := e.Apply(e.cmdCtx, cmd)
	switch {
	case err == nil:
		logger.Debug().Msg("Command applied")
	case errors.Is(err, ErrNotFound):
		// Unknown targets are dropped without a bus signal
		logger.Debug().Msg("Command target not found, ignoring")
	default:
		logger.Error().Err(err).Msg("Command failed")
	}
}

func (e *Engine) get(ctx context.Context, kind entity.Kind, id int) (entity.Entity, bool, error) {
	switch kind {
	case entity.KindLight:
		return e.controller.GetLight(ctx, id)
	case entity.KindGroup:
		return e.controller.GetGroup(ctx, id)
	default:
		return entity.Entity{}, false, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func (e *Engine) save(ctx context.Context, ent entity.Entity) (entity.Entity, error) {
	switch ent.Kind {
	case entity.KindLight:
		return e.controller.SaveLight(ctx, ent)
	case entity.KindGroup:
		return e.controller.SaveGroup(ctx, ent)
	default:
		return entity.Entity{}, fmt.Errorf("unknown entity kind %q", ent.Kind)
	}
}

// report runs one entity through change detection and publishes it if it
// changed. A failed publish is logged; the store keeps the new snapshot.
func (e *Engine) report(ent entity.Entity) {
	e.reportMu.Lock()
	defer e.reportMu.Unlock()

	changed, ok := Detect(e.store, ent)
	if !ok {
		return
	}
	if err := e.publisher.Publish(changed); err != nil {
		log.Error().
			Err(err).
			Str("kind", string(ent.Kind)).
			Int("id", ent.ID).
			Msg("Failed to publish state")
		return
	}
	log.Debug().Str("kind", string(ent.Kind)).Int("id", ent.ID).Msg("State published")
}
