package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg"
	"Task_Mania/internal/pkg/log"
)

const defaultMaxRetry = 5

type OutboxStore interface {
	List(ctx context.Context, batchSize, maxRetry int) ([]model.EventOutbox, error)
	RetryUpdate(ctx context.Context, id uint64) error
	SuccessUpdate(ctx context.Context, id uint64) error
}

type Sender func(ctx context.Context, ob *model.EventOutbox) error

// OutboxRelayer drains the event outbox into a Sender, at least once.
type OutboxRelayer struct {
	repo      OutboxStore
	batchSize int
	maxRetry  int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(repo OutboxStore, sender Sender, batchSize int, interval time.Duration) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{
		repo:      repo,
		batchSize: batchSize,
		maxRetry:  defaultMaxRetry,
		interval:  interval,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce returns the number of rows delivered.
func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		log.Errorf(ctx)("outbox query: %v", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := &rows[i]
		if err = r.sender(ctx, ob); err != nil {
			log.GetLogger(ctx).WithFields(logrus.Fields{
				"outbox_id": ob.ID,
				"event":     ob.EventType,
				"retry":     ob.Retry + 1,
			}).WithError(err).Warn("outbox send failed")
			if err = r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				log.Errorf(ctx)("outbox %d mark failed: %v", ob.ID, err)
			}
			continue
		}
		if err = r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			log.Errorf(ctx)("outbox %d mark sent: %v", ob.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender publishes keyed by aggregate so events of one community or
// user stay ordered within a partition.
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.EventOutbox) error {
		return p.Send(ctx, ob.AggregateID, []byte(ob.Payload), map[string]string{
			"event_type": ob.EventType,
			"actor_id":   ob.ActorID,
		})
	}
}

// LogSender is used when Kafka is disabled.
func LogSender(ctx context.Context, ob *model.EventOutbox) error {
	log.GetLogger(ctx).WithFields(logrus.Fields{
		"event":     ob.EventType,
		"aggregate": ob.AggregateID,
		"actor":     ob.ActorID,
		"subject":   ob.SubjectID,
	}).Info(ob.Payload)
	return nil
}

type ReconcileStore interface {
	ReconcileList(ctx context.Context, batchSize int, lastID string) ([]model.FollowCounts, string, error)
	RealFollowings(ctx context.Context, userID string) (int64, error)
	RealFollowers(ctx context.Context, userID string) (int64, error)
	FixCounts(ctx context.Context, userID string, following, followers int64) error
}

// FollowCountReconciler recomputes denormalized follow counters from the
// follow table.
type FollowCountReconciler struct {
	repo      ReconcileStore
	batchSize int
	interval  time.Duration
}

func NewFollowCountReconciler(repo ReconcileStore, batchSize int, interval time.Duration) *FollowCountReconciler {
	if batchSize <= 0 {
		batchSize = 500
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &FollowCountReconciler{repo: repo, batchSize: batchSize, interval: interval}
}

func (r *FollowCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.reconcileOnce(ctx)
		}
	}
}

// reconcileOnce walks all users once and returns how many were corrected.
func (r *FollowCountReconciler) reconcileOnce(ctx context.Context) int {
	fixed := 0
	lastID := ""
	for ctx.Err() == nil {
		users, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
		if err != nil {
			log.Errorf(ctx)("reconcile list: %v", err)
			return fixed
		}
		if len(users) == 0 {
			return fixed
		}
		for _, u := range users {
			following, err := r.repo.RealFollowings(ctx, u.ID)
			if err != nil {
				continue
			}
			followers, err := r.repo.RealFollowers(ctx, u.ID)
			if err != nil {
				continue
			}
			if following == u.FollowingCount && followers == u.FollowerCount {
				continue
			}
			if err = r.repo.FixCounts(ctx, u.ID, following, followers); err != nil {
				log.Warnf(ctx)("reconcile user %s: %v", u.ID, err)
				continue
			}
			fixed++
		}
		lastID = next
	}
	return fixed
}
