// Package pipeline drives the triage run: acquire a batch, classify it,
// persist what the gate accepts, repeat until the source is exhausted.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/christiano-developer/gaur/internal/classifier"
	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/internal/store"
	"github.com/christiano-developer/gaur/internal/triage"
	"github.com/christiano-developer/gaur/pkg/kafka"
	"github.com/christiano-developer/gaur/pkg/logging"
)

// State is the orchestrator's run state.
type State int32

const (
	StateIdle State = iota
	StateAcquiring
	StateClassifying
	StatePersisting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateClassifying:
		return "classifying"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RetentionPolicy controls what happens to posts the gate rejects.
type RetentionPolicy string

const (
	// RetentionDiscard drops rejected posts without a trace.
	RetentionDiscard RetentionPolicy = "discard"

	// RetentionArchive stores rejected posts without raising an alert.
	RetentionArchive RetentionPolicy = "archive"
)

// Config configures one orchestrator.
type Config struct {
	BatchSize       int
	MaxBatches      int // 0 means run until the source is exhausted
	RetentionPolicy RetentionPolicy
	AlertTopic      string
}

// AlertPublisher emits alert events to downstream consumers.
type AlertPublisher interface {
	PublishAlertEvent(topic string, event *kafka.AlertEvent) error
}

// Summary is the post-run report. Counters are observational only; no
// decision in the pipeline reads them.
type Summary struct {
	BatchesProcessed int
	PostsSeen        int
	PostsAccepted    int
	PostsReviewed    int
	PostsDiscarded   int
	AlertsCreated    int
	FailedAtBatch    int // 1-based index of the batch that failed, 0 if none
}

// Orchestrator runs the acquire/classify/persist loop for one source.
// Acquisition and classification alternate rather than overlap; within a
// batch posts are classified sequentially so every verdict stays
// attributable to its post by index.
type Orchestrator struct {
	source    Source
	chain     *classifier.Chain
	gate      *triage.Gate
	sink      store.Store
	publisher AlertPublisher
	metrics   *Metrics
	logger    logging.Logger
	cfg       Config

	state atomic.Int32
	stop  atomic.Bool
}

// NewOrchestrator wires a pipeline run. The publisher and metrics are
// optional.
func NewOrchestrator(source Source, chain *classifier.Chain, gate *triage.Gate, sink store.Store, publisher AlertPublisher, metrics *Metrics, logger logging.Logger, cfg Config) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.RetentionPolicy != RetentionArchive {
		cfg.RetentionPolicy = RetentionDiscard
	}
	return &Orchestrator{
		source:    source,
		chain:     chain,
		gate:      gate,
		sink:      sink,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// State reports the current run state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// RequestStop asks the run to stop after the in-flight batch is persisted.
// It never interrupts a batch mid-flight.
func (o *Orchestrator) RequestStop() {
	o.stop.Store(true)
}

// Run executes the pipeline until the source is exhausted, the batch limit
// is reached, or a stop is requested. Acquisition errors abort the run;
// persistence errors are collected and returned but do not abort it.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var persistErrs []error

	for {
		if o.stop.Load() || ctx.Err() != nil {
			break
		}
		if o.cfg.MaxBatches > 0 && summary.BatchesProcessed >= o.cfg.MaxBatches {
			break
		}

		o.state.Store(int32(StateAcquiring))
		batch, err := o.source.NextBatch(ctx, o.cfg.BatchSize)
		if err != nil {
			if errors.Is(err, ErrExhausted) {
				break
			}
			o.state.Store(int32(StateFailed))
			summary.FailedAtBatch = summary.BatchesProcessed + 1
			return summary, fmt.Errorf("acquisition failed at batch %d: %w", summary.FailedAtBatch, err)
		}
		if len(batch) == 0 {
			break
		}

		o.state.Store(int32(StateClassifying))
		start := time.Now()
		results := make([]models.ClassificationResult, len(batch))
		for i, post := range batch {
			results[i] = o.chain.Classify(ctx, post)
		}
		if o.metrics != nil {
			o.metrics.BatchDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
		}

		o.state.Store(int32(StatePersisting))
		start = time.Now()
		for i, post := range batch {
			summary.PostsSeen++
			if o.metrics != nil {
				o.metrics.PostsSeen.WithLabelValues(post.SourcePlatform).Inc()
			}

			if err := o.persistOne(ctx, post, results[i], summary); err != nil {
				persistErrs = append(persistErrs, err)
			}
		}
		if o.metrics != nil {
			o.metrics.BatchDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())
		}

		if committer, ok := o.source.(Committer); ok {
			if err := committer.Commit(ctx); err != nil {
				persistErrs = append(persistErrs, fmt.Errorf("commit batch %d: %w", summary.BatchesProcessed+1, err))
			}
		}

		summary.BatchesProcessed++

		if o.logger != nil {
			o.logger.WithFields(logging.Fields{
				"batch":     summary.BatchesProcessed,
				"seen":      summary.PostsSeen,
				"accepted":  summary.PostsAccepted,
				"discarded": summary.PostsDiscarded,
			}).Info("Batch complete")
		}
	}

	o.state.Store(int32(StateDone))

	if o.logger != nil {
		o.logger.WithFields(logging.Fields{
			"batches":   summary.BatchesProcessed,
			"seen":      summary.PostsSeen,
			"accepted":  summary.PostsAccepted,
			"reviewed":  summary.PostsReviewed,
			"discarded": summary.PostsDiscarded,
			"alerts":    summary.AlertsCreated,
		}).Info("Run complete")
	}

	return summary, errors.Join(persistErrs...)
}

func (o *Orchestrator) persistOne(ctx context.Context, post models.RawPost, result models.ClassificationResult, summary *Summary) error {
	decision := o.gate.Decide(result)

	switch decision {
	case models.DecisionAccept, models.DecisionReview:
		postID, err := o.sink.StorePost(ctx, post, result)
		if err != nil {
			return fmt.Errorf("store post %s/%s: %w", post.SourcePlatform, post.SourceID, err)
		}
		alertID, err := o.sink.CreateAlert(ctx, postID, post, result)
		if err != nil {
			return fmt.Errorf("create alert for post %s/%s: %w", post.SourcePlatform, post.SourceID, err)
		}

		if decision == models.DecisionReview {
			summary.PostsReviewed++
			if o.metrics != nil {
				o.metrics.PostsReviewed.WithLabelValues(post.SourcePlatform).Inc()
			}
		} else {
			summary.PostsAccepted++
			if o.metrics != nil {
				o.metrics.PostsAccepted.WithLabelValues(post.SourcePlatform, result.RiskLevel).Inc()
			}
		}
		summary.AlertsCreated++
		if o.metrics != nil {
			o.metrics.AlertsCreated.WithLabelValues(post.SourcePlatform, result.FraudType).Inc()
		}

		o.publishAlert(post, result, alertID)

	case models.DecisionDiscard:
		if o.cfg.RetentionPolicy == RetentionArchive {
			if _, err := o.sink.StorePost(ctx, post, result); err != nil {
				return fmt.Errorf("archive post %s/%s: %w", post.SourcePlatform, post.SourceID, err)
			}
		}
		summary.PostsDiscarded++
		if o.metrics != nil {
			o.metrics.PostsDiscarded.WithLabelValues(post.SourcePlatform).Inc()
		}
	}

	return nil
}

// publishAlert is best effort; a broker outage must not fail the run after
// the alert is already durably stored.
func (o *Orchestrator) publishAlert(post models.RawPost, result models.ClassificationResult, alertID int64) {
	if o.publisher == nil || o.cfg.AlertTopic == "" {
		return
	}

	event := kafka.NewAlertCreatedEvent("gaur-pipeline")
	event.AlertID = alertID
	event.SourcePlatform = post.SourcePlatform
	event.SourceID = post.SourceID
	event.ConfidenceScore = result.Score
	event.RiskLevel = result.RiskLevel
	event.FraudType = result.FraudType
	event.Keywords = result.Keywords

	if err := o.publisher.PublishAlertEvent(o.cfg.AlertTopic, event); err != nil && o.logger != nil {
		o.logger.WithFields(logging.Fields{
			"alert_id": alertID,
			"topic":    o.cfg.AlertTopic,
			"error":    err.Error(),
		}).Warn("Failed to publish alert event")
	}
}
