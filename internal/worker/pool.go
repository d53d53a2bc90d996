package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/cccbbbaaaa/culture-china/internal/logger"

	"github.com/rs/zerolog"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

// Job is one unit of work run by the pool.
type Job func(ctx context.Context) error

// Pool runs jobs on a fixed number of goroutines. Submit hands a job directly
// to an idle worker and blocks while every worker is busy, so a job is either
// running or still owned by the caller.
type Pool struct {
	size    int
	jobs    chan Job
	quit    chan struct{}
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	once    sync.Once
	log     zerolog.Logger
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size: size,
		jobs: make(chan Job),
		quit: make(chan struct{}),
		log:  logger.Get().With().Str("component", "worker_pool").Logger(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.size).Msg("Starting worker pool")

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Stop rejects further submissions and waits for running jobs to return.
// It is safe to call while Submit is blocked in another goroutine.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.log.Info().Msg("Stopping worker pool")
		// Wake blocked submitters first so they release the read lock.
		close(p.quit)
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()
		p.wg.Wait()
		p.log.Info().Msg("Worker pool stopped")
	})
}

// Submit waits for an idle worker. It returns ctx.Err() when ctx ends first
// and ErrPoolStopped once the pool is stopping.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return ErrPoolStopped
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Worker stopping due to context cancellation")
			return
		case job, ok := <-p.jobs:
			if !ok {
				log.Debug().Msg("Worker stopping due to closed job channel")
				return
			}

			if err := job(ctx); err != nil {
				log.Error().Err(err).Msg("Job execution failed")
			}
		}
	}
}
