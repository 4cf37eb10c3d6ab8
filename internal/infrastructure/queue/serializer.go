package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Do once the serializer has shut down.
var ErrStopped = errors.New("serializer stopped")

type job struct {
	ctx  context.Context
	key  string
	fn   func(context.Context) error
	done chan error
}

// Serializer runs functions on a fixed set of workers using consistent
// hashing on a key, so work for the same key (a task id) never overlaps and
// runs in submission order. Different keys proceed in parallel when they
// land on different workers.
type Serializer struct {
	workers []chan job
	// exited[i] is closed once worker i has returned and rejected its
	// leftover queue.
	exited []chan struct{}
	stop   chan struct{}
	log    zerolog.Logger
}

// NewSerializer creates a Serializer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSerializer(numWorkers int, log zerolog.Logger) *Serializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Serializer{
		workers: make([]chan job, numWorkers),
		exited:  make([]chan struct{}, numWorkers),
		stop:    make(chan struct{}),
		log:     log,
	}
	for i := range s.workers {
		s.workers[i] = make(chan job, channelBuffer)
		s.exited[i] = make(chan struct{})
	}
	return s
}

// Start launches all worker goroutines. Once ctx is cancelled new Do calls
// fail with ErrStopped; a job already running finishes and reports its own
// result, jobs still queued are rejected with ErrStopped.
func (s *Serializer) Start(ctx context.Context) {
	for i, ch := range s.workers {
		go s.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(s.stop)
	}()
}

// Do runs fn on the worker responsible for key and waits for its result.
func (s *Serializer) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	j := job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}
	idx := s.shardIndex(key)
	depth := metrics.MutationQueueDepth.WithLabelValues(strconv.Itoa(idx))

	select {
	case <-s.stop:
		return ErrStopped
	default:
	}

	depth.Inc()
	select {
	case s.workers[idx] <- j:
	case <-ctx.Done():
		depth.Dec()
		return ctx.Err()
	case <-s.stop:
		depth.Dec()
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.exited[idx]:
		// The worker answers every job it took before exiting, so an empty
		// done channel means the job was never received.
		select {
		case err := <-j.done:
			return err
		default:
			depth.Dec()
			return ErrStopped
		}
	}
}

// shardIndex maps a key deterministically to a worker index.
func (s *Serializer) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *Serializer) runWorker(ctx context.Context, id int, ch <-chan job) {
	depth := metrics.MutationQueueDepth.WithLabelValues(strconv.Itoa(id))
	defer close(s.exited[id])
	for {
		select {
		case <-ctx.Done():
			s.reject(ch, depth)
			return
		case j := <-ch:
			depth.Dec()
			// The caller may have given up while the job was queued.
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			err := s.run(j)
			if err != nil {
				s.log.Debug().Err(err).Str("key", j.key).Int("worker_id", id).Msg("serialized job failed")
			}
			j.done <- err
		}
	}
}

// reject answers every job still queued on ch with ErrStopped.
func (s *Serializer) reject(ch <-chan job, depth prometheus.Gauge) {
	for {
		select {
		case j := <-ch:
			depth.Dec()
			j.done <- ErrStopped
		default:
			return
		}
	}
}

func (s *Serializer) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("key", j.key).Msg("serialized job panicked")
			err = fmt.Errorf("serialized job panicked: %v", r)
		}
	}()
	return j.fn(j.ctx)
}
