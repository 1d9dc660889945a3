package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/extract"
	"github.com/fleveque/market-radar/internal/llm"
	"github.com/fleveque/market-radar/internal/model"
)

var (
	// ErrNoPreviousSegment is returned by Retry before any analysis was started.
	ErrNoPreviousSegment = errors.New("no previous analysis to retry")
	// ErrSuperseded is returned by Wait when a newer analysis replaced the awaited one.
	ErrSuperseded = errors.New("analysis was superseded by a newer request")
	// ErrSessionClosed is returned once the session has been closed.
	ErrSessionClosed = errors.New("session is closed")
)

// State is the presentation state of the session.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// FailureKind classifies the error behind a StateError view.
type FailureKind string

const (
	FailureGeneration     FailureKind = "GenerationFailure"
	FailureInvalidJSON    FailureKind = "InvalidJSON"
	FailureSchemaMismatch FailureKind = "SchemaMismatch"
	FailureOther          FailureKind = "Other"
)

// View is what the presentation layer renders: one outcome of one request.
type View struct {
	RequestID uint64                `json:"request_id"`
	State     State                 `json:"state"`
	Segment   string                `json:"segment,omitempty"`
	Result    *model.AnalysisResult `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
	Failure   FailureKind           `json:"failure,omitempty"`
	Problems  []string              `json:"problems,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func classify(err error) (FailureKind, []string) {
	var extractErr *extract.Error
	switch {
	case errors.Is(err, llm.ErrGeneration):
		return FailureGeneration, nil
	case errors.As(err, &extractErr):
		if extractErr.Kind == extract.KindSchemaMismatch {
			return FailureSchemaMismatch, extractErr.Problems
		}
		return FailureInvalidJSON, nil
	default:
		return FailureOther, nil
	}
}

// Analyzer runs one analysis. *AnalysisService implements it.
type Analyzer interface {
	Analyze(ctx context.Context, segment string) (*model.AnalysisResult, error)
}

type task struct {
	id      uint64
	segment string
	cancel  context.CancelFunc
	done    chan struct{}
	final   View // written under Session.mu before done is closed
}

// Session is a single in-flight analysis slot. Starting a new analysis
// cancels the previous one, and completions carrying a request id other
// than the current one are discarded, so a slow stale reply can never
// overwrite a newer result.
type Session struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	seq         uint64
	current     *task
	view        View
	lastSegment string
	subscribers map[chan View]struct{}
	closed      bool
	wg          sync.WaitGroup
}

// NewSession creates an idle session. timeout bounds every analysis.
func NewSession(analyzer Analyzer, timeout time.Duration, logger *zap.Logger) *Session {
	return &Session{
		analyzer:    analyzer,
		timeout:     timeout,
		logger:      logger,
		view:        View{State: StateIdle, UpdatedAt: time.Now()},
		subscribers: make(map[chan View]struct{}),
	}
}

// Start begins analyzing segment and returns the loading view immediately.
func (s *Session) Start(segment string) (View, error) {
	query, err := model.NewMarketSegmentQuery(segment)
	if err != nil {
		return View{}, err
	}
	return s.start(query.String())
}

// Retry re-runs the whole pipeline for the most recently requested segment.
func (s *Session) Retry() (View, error) {
	s.mu.Lock()
	segment := s.lastSegment
	s.mu.Unlock()

	if segment == "" {
		return View{}, ErrNoPreviousSegment
	}
	return s.start(segment)
}

func (s *Session) start(segment string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return View{}, ErrSessionClosed
	}

	if s.current != nil {
		s.current.cancel()
	}

	s.seq++
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	t := &task{
		id:      s.seq,
		segment: segment,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.current = t
	s.lastSegment = segment

	view := View{RequestID: t.id, State: StateLoading, Segment: segment, UpdatedAt: time.Now()}
	s.publishLocked(view)

	s.logger.Info("analysis started",
		zap.Uint64("request_id", t.id),
		zap.String("segment", segment),
	)

	s.wg.Add(1)
	go s.run(ctx, t)

	return view, nil
}

func (s *Session) run(ctx context.Context, t *task) {
	defer s.wg.Done()
	defer t.cancel()

	result, err := s.analyzer.Analyze(ctx, t.segment)

	view := View{RequestID: t.id, Segment: t.segment, UpdatedAt: time.Now()}
	if err != nil {
		view.State = StateError
		view.Error = err.Error()
		view.Failure, view.Problems = classify(err)
	} else {
		view.State = StateSuccess
		view.Result = result
	}

	s.mu.Lock()
	t.final = view
	stale := s.current != t
	if !stale {
		s.publishLocked(view)
	}
	s.mu.Unlock()
	close(t.done)

	switch {
	case stale:
		s.logger.Debug("discarding stale analysis",
			zap.Uint64("request_id", t.id),
			zap.String("segment", t.segment),
		)
	case err != nil:
		s.logger.Warn("analysis failed",
			zap.Uint64("request_id", t.id),
			zap.String("segment", t.segment),
			zap.Error(err),
		)
	}
}

// Wait blocks until request id settles and returns its final view.
// It fails with ErrSuperseded if a newer request replaced it.
func (s *Session) Wait(ctx context.Context, id uint64) (View, error) {
	s.mu.Lock()
	t := s.current
	s.mu.Unlock()

	if t == nil || t.id != id {
		return View{}, ErrSuperseded
	}

	select {
	case <-t.done:
	case <-ctx.Done():
		return View{}, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != t {
		return t.final, ErrSuperseded
	}
	return t.final, nil
}

// Current returns the latest published view.
func (s *Session) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Subscribe streams every published view, starting with the current one.
// Slow subscribers miss intermediate views rather than blocking the session,
// but always receive the latest one.
// The returned func unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	ch <- s.view
	s.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subscribers[ch]; ok {
				delete(s.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Close cancels any in-flight analysis, waits for it to finish and closes
// all subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.current != nil {
		s.current.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// publishLocked records view as current and fans it out. A subscriber whose
// buffer is full loses its oldest queued view, so the newest one, and in
// particular the settled one, always gets through.
func (s *Session) publishLocked(view View) {
	s.view = view
	for ch := range s.subscribers {
		select {
		case ch <- view:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		// s.mu is held and publishLocked is the only sender, so the slot
		// freed above is still free.
		select {
		case ch <- view:
		default:
		}
	}
}
