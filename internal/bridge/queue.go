package bridge

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Queue applies commands strictly one after another, in submission order.
//
// A chain is started by the first command after an idle period and retires
// once it has nothing left to run, so the next command starts a fresh chain.
// chain is the handle of the running chain: nil while idle, closed when the
// chain retires.
type Queue struct {
	run func(Command)

	mu      sync.Mutex
	pending []Command
	chain   chan struct{}
}

// NewQueue creates an idle queue that executes commands with run.
func NewQueue(run func(Command)) *Queue {
	return &Queue{run: run}
}

// Enqueue appends cmd to the running chain, starting one if the queue is idle.
// It never blocks on command execution.
func (q *Queue) Enqueue(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, cmd)
	if q.chain == nil {
		q.chain = make(chan struct{})
		go q.drain(q.chain)
	}
}

func (q *Queue) drain(done chan struct{}) {
	defer close(done)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.chain = nil
			q.pending = nil
			q.mu.Unlock()
			return
		}
		cmd := q.pending[0]
		q.pending[0] = Command{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.execute(cmd)
	}
}

// execute runs one command; a panicking command must not kill the chain.
func (q *Queue) execute(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("command_id", cmd.ID).
				Str("kind", string(cmd.Kind)).
				Int("id", cmd.Target).
				Msg("Command panicked")
		}
	}()
	q.run(cmd)
}

// Active reports whether a chain is currently running.
func (q *Queue) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.chain != nil
}

// Wait blocks until the queue is idle or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		chain := q.chain
		q.mu.Unlock()

		if chain == nil {
			return nil
		}
		select {
		case <-chain:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
