package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/christiano-developer/gaur/internal/classifier"
	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/internal/store"
	"github.com/christiano-developer/gaur/internal/triage"
	"github.com/christiano-developer/gaur/pkg/kafka"
)

// scoredClassifier returns a verdict whose score is looked up by source ID.
type scoredClassifier struct {
	scores map[string]float64
}

func (c *scoredClassifier) Name() string { return "scored" }

func (c *scoredClassifier) Classify(_ context.Context, post models.RawPost) (models.ClassificationResult, error) {
	score := c.scores[post.SourceID]
	return models.ClassificationResult{
		Score:          score,
		RiskLevel:      models.RiskLevelForScore(score),
		FraudType:      models.FraudTypeGeneric,
		Keywords:       []string{},
		RedFlags:       []string{},
		Reasoning:      "scripted",
		AnalysisMethod: "scored",
	}, nil
}

type failingClassifier struct{}

func (c *failingClassifier) Name() string { return "failing" }

func (c *failingClassifier) Classify(_ context.Context, _ models.RawPost) (models.ClassificationResult, error) {
	return models.ClassificationResult{}, errors.New("backend down")
}

type fakeStore struct {
	posts      []models.RawPost
	alerts     []models.ClassificationResult
	failPostID string
	nextPostID int64
}

func (f *fakeStore) StorePost(_ context.Context, post models.RawPost, _ models.ClassificationResult) (int64, error) {
	if post.SourceID == f.failPostID {
		return 0, errors.New("insert failed")
	}
	f.posts = append(f.posts, post)
	f.nextPostID++
	return f.nextPostID, nil
}

func (f *fakeStore) CreateAlert(_ context.Context, _ int64, _ models.RawPost, result models.ClassificationResult) (int64, error) {
	f.alerts = append(f.alerts, result)
	return int64(len(f.alerts)), nil
}

func (f *fakeStore) ListAlerts(context.Context, store.AlertFilter) ([]models.FraudAlert, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) GetAlert(context.Context, int64) (*models.FraudAlert, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateAlertStatus(context.Context, int64, string) error { return nil }

func (f *fakeStore) GetStats(context.Context) (*models.AlertStats, error) {
	return &models.AlertStats{}, nil
}

type capturingPublisher struct {
	events []*kafka.AlertEvent
}

func (p *capturingPublisher) PublishAlertEvent(_ string, event *kafka.AlertEvent) error {
	p.events = append(p.events, event)
	return nil
}

// scriptedSource yields pre-built batches and can fail at a given call.
type scriptedSource struct {
	batches [][]models.RawPost
	failAt  int // 1-based call index that errors, 0 for never
	calls   int
	commits int
}

func (s *scriptedSource) NextBatch(_ context.Context, _ int) ([]models.RawPost, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return nil, errors.New("login challenge")
	}
	if s.calls > len(s.batches) {
		return nil, ErrExhausted
	}
	return s.batches[s.calls-1], nil
}

func (s *scriptedSource) Commit(_ context.Context) error {
	s.commits++
	return nil
}

func makePosts(n int, prefix string) []models.RawPost {
	posts := make([]models.RawPost, n)
	for i := range posts {
		posts[i] = models.RawPost{
			SourcePlatform: "facebook",
			SourceID:       fmt.Sprintf("%s%d", prefix, i+1),
			Text:           "post text",
		}
	}
	return posts
}

func newOrchestrator(source Source, scores map[string]float64, sink store.Store, pub AlertPublisher, cfg Config) *Orchestrator {
	chain := classifier.NewChain(nil, &scoredClassifier{scores: scores})
	gate := triage.NewGate(triage.DefaultConfig())
	return NewOrchestrator(source, chain, gate, sink, pub, nil, nil, cfg)
}

func TestRunSingleFraudInBatch(t *testing.T) {
	posts := makePosts(10, "p")
	scores := map[string]float64{}
	for _, p := range posts {
		scores[p.SourceID] = 0.1
	}
	scores["p3"] = 0.9

	sink := &fakeStore{}
	pub := &capturingPublisher{}
	o := newOrchestrator(NewMemorySource(posts), scores, sink, pub, Config{BatchSize: 10, AlertTopic: "fraud_alerts"})

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if summary.PostsSeen != 10 {
		t.Fatalf("expected 10 posts seen, got %d", summary.PostsSeen)
	}
	if summary.PostsAccepted != 1 {
		t.Fatalf("expected 1 accepted, got %d", summary.PostsAccepted)
	}
	if summary.PostsDiscarded != 9 {
		t.Fatalf("expected 9 discarded, got %d", summary.PostsDiscarded)
	}
	if len(sink.posts) != 1 || sink.posts[0].SourceID != "p3" {
		t.Fatalf("expected only p3 stored, got %+v", sink.posts)
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(sink.alerts))
	}
	if len(pub.events) != 1 || pub.events[0].SourceID != "p3" {
		t.Fatalf("expected 1 published event for p3, got %+v", pub.events)
	}
	if o.State() != StateDone {
		t.Fatalf("expected done state, got %s", o.State())
	}
}

func TestRunAcquisitionFailure(t *testing.T) {
	source := &scriptedSource{
		batches: [][]models.RawPost{makePosts(2, "a"), makePosts(2, "b")},
		failAt:  2,
	}
	sink := &fakeStore{}
	o := newOrchestrator(source, map[string]float64{"a1": 0.9, "a2": 0.1}, sink, nil, Config{BatchSize: 2})

	summary, err := o.Run(context.Background())
	if err == nil {
		t.Fatal("expected acquisition error")
	}
	if o.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", o.State())
	}
	if summary.FailedAtBatch != 2 {
		t.Fatalf("expected failure at batch 2, got %d", summary.FailedAtBatch)
	}
	// Totals from the completed batch survive the failure.
	if summary.PostsSeen != 2 || summary.PostsAccepted != 1 {
		t.Fatalf("unexpected totals after failure: %+v", summary)
	}
}

func TestRunMaxBatches(t *testing.T) {
	source := &scriptedSource{
		batches: [][]models.RawPost{makePosts(2, "a"), makePosts(2, "b"), makePosts(2, "c")},
	}
	o := newOrchestrator(source, map[string]float64{}, &fakeStore{}, nil, Config{BatchSize: 2, MaxBatches: 2})

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.BatchesProcessed != 2 {
		t.Fatalf("expected 2 batches, got %d", summary.BatchesProcessed)
	}
	if summary.PostsSeen != 4 {
		t.Fatalf("expected 4 posts seen, got %d", summary.PostsSeen)
	}
}

func TestRunStopBetweenBatches(t *testing.T) {
	source := &scriptedSource{
		batches: [][]models.RawPost{makePosts(2, "a"), makePosts(2, "b")},
	}
	sink := &fakeStore{}
	o := newOrchestrator(source, map[string]float64{}, sink, nil, Config{BatchSize: 2})
	o.RequestStop()

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.BatchesProcessed != 0 {
		t.Fatalf("expected no batches after stop request, got %d", summary.BatchesProcessed)
	}
	if o.State() != StateDone {
		t.Fatalf("expected done state, got %s", o.State())
	}
}

func TestRunPersistErrorDoesNotAbort(t *testing.T) {
	posts := makePosts(3, "p")
	scores := map[string]float64{"p1": 0.9, "p2": 0.9, "p3": 0.9}
	sink := &fakeStore{failPostID: "p2"}
	o := newOrchestrator(NewMemorySource(posts), scores, sink, nil, Config{BatchSize: 3})

	summary, err := o.Run(context.Background())
	if err == nil {
		t.Fatal("expected persist error to be surfaced")
	}
	if o.State() != StateDone {
		t.Fatalf("persist errors must not fail the run, state %s", o.State())
	}
	// p2 is neither accepted nor discarded: it was never durably stored.
	if summary.PostsAccepted != 2 {
		t.Fatalf("expected 2 accepted, got %d", summary.PostsAccepted)
	}
	if len(sink.alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(sink.alerts))
	}
}

func TestRunReviewPolicy(t *testing.T) {
	posts := makePosts(1, "p")
	chain := classifier.NewChain(nil, &failingClassifier{})
	gate := triage.NewGate(triage.Config{FailedAnalysisAction: triage.FailedReview})
	sink := &fakeStore{}
	o := NewOrchestrator(NewMemorySource(posts), chain, gate, sink, nil, nil, nil, Config{BatchSize: 1})

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.PostsReviewed != 1 {
		t.Fatalf("expected 1 reviewed post, got %d", summary.PostsReviewed)
	}
	if len(sink.alerts) != 1 || sink.alerts[0].FraudType != models.FraudTypeFailed {
		t.Fatalf("expected an analysis_failed alert for review, got %+v", sink.alerts)
	}
}

func TestRunArchivePolicy(t *testing.T) {
	posts := makePosts(2, "p")
	scores := map[string]float64{"p1": 0.1, "p2": 0.9}
	sink := &fakeStore{}
	o := newOrchestrator(NewMemorySource(posts), scores, sink, nil, Config{
		BatchSize:       2,
		RetentionPolicy: RetentionArchive,
	})

	summary, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.PostsDiscarded != 1 || summary.PostsAccepted != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	// Both posts stored under archive policy, but only one alert raised.
	if len(sink.posts) != 2 {
		t.Fatalf("expected 2 stored posts, got %d", len(sink.posts))
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(sink.alerts))
	}
}

func TestRunCommitsAfterEachBatch(t *testing.T) {
	source := &scriptedSource{
		batches: [][]models.RawPost{makePosts(2, "a"), makePosts(2, "b")},
	}
	o := newOrchestrator(source, map[string]float64{}, &fakeStore{}, nil, Config{BatchSize: 2})

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if source.commits != 2 {
		t.Fatalf("expected 2 commits, got %d", source.commits)
	}
}

func TestMemorySourceExhaustion(t *testing.T) {
	source := NewMemorySource(makePosts(3, "p"))

	batch, err := source.NextBatch(context.Background(), 2)
	if err != nil || len(batch) != 2 {
		t.Fatalf("expected 2 posts, got %d err %v", len(batch), err)
	}
	batch, err = source.NextBatch(context.Background(), 2)
	if err != nil || len(batch) != 1 {
		t.Fatalf("expected 1 post, got %d err %v", len(batch), err)
	}
	if _, err := source.NextBatch(context.Background(), 2); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	// Exhaustion is sticky.
	if _, err := source.NextBatch(context.Background(), 2); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted on repeat call, got %v", err)
	}
}
