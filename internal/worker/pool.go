package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vendapos/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail  = "jobs:email"
	QueueFiscal = "jobs:fiscal"
)

const (
	JobReceiptEmail = "receipt_email"
	JobFiscalRetry  = "fiscal_retry"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one decoded payload. Handlers own their retry policy.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes a receipt e-mail job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	if _, ok := payload.(dto.ReceiptEmailJob); !ok {
		return fmt.Errorf("dispatcher: unexpected email payload %T", payload)
	}
	return d.enqueue(ctx, QueueEmail, JobReceiptEmail, payload)
}

// DeadLetter parks a job that will not be retried any more.
func (d *Dispatcher) DeadLetter(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	parkJob(ctx, d.rdb, newDeadLetter(queue, jobType, payload, reason, attempts))
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]JobHandler
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: map[string]JobHandler{}}
}

// Handle registers h for jobType. Call before Start.
func (p *Pool) Handle(jobType string, h JobHandler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming the e-mail queue.
// Each goroutine blocks on BRPOP and is idle between jobs.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned after ctx was cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		parkJob(ctx, p.rdb, newDeadLetter(queue, "unknown", json.RawMessage(fmt.Sprintf("%q", raw)), "invalid envelope: "+err.Error(), 0))
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		parkJob(ctx, p.rdb, newDeadLetter(queue, job.Type, job.Payload, "no handler registered", 0))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("type", job.Type).Msg("worker: handler panicked")
			parkJob(ctx, p.rdb, newDeadLetter(queue, job.Type, job.Payload, fmt.Sprintf("panic: %v", r), 0))
		}
	}()
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	h.Process(ctx, job.Payload)
}
