package analytics

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type visit struct {
	ip, userAgent, path string
}

// Recorder moves visitor writes off the request path. Visits queue in a
// bounded buffer and are dropped when it is full.
type Recorder struct {
	store  *Store
	queue  chan visit
	logger *zap.Logger
}

// NewRecorder returns a recorder with room for buffer pending visits.
func NewRecorder(store *Store, buffer int) *Recorder {
	return &Recorder{
		store:  store,
		queue:  make(chan visit, max(buffer, 1)),
		logger: store.logger,
	}
}

// Record queues a visit. It never blocks.
func (r *Recorder) Record(ip, userAgent, path string) bool {
	select {
	case r.queue <- visit{ip: ip, userAgent: userAgent, path: path}:
		return true
	default:
		r.logger.Warn("visitor queue full, dropping visit", zap.String("path", path))
		return false
	}
}

// Run writes queued visits until ctx ends, then drains what is already
// queued.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case v := <-r.queue:
			r.write(context.WithoutCancel(ctx), v)
		case <-ctx.Done():
			for {
				select {
				case v := <-r.queue:
					r.write(context.WithoutCancel(ctx), v)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(ctx context.Context, v visit) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.store.Track(ctx, v.ip, v.userAgent, v.path); err != nil {
		r.logger.Error("error recording visitor", zap.Error(err))
	}
}

// RunCleanup purges rows older than retention now and then every interval
// until ctx ends.
func (s *Store) RunCleanup(ctx context.Context, clock clockwork.Clock, interval, retention time.Duration) error {
	if _, err := s.Cleanup(ctx, retention); err != nil {
		s.logger.Error("error cleaning up old visitor data", zap.Error(err))
	}
	if interval <= 0 {
		return nil
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if _, err := s.Cleanup(ctx, retention); err != nil {
				s.logger.Error("error cleaning up old visitor data", zap.Error(err))
			}
		}
	}
}
