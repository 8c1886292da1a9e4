package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/repository"
	"EngineMirror/internal/domain/service"
	"EngineMirror/pkg/logger"
)

var (
	ErrUnknownSource  = service.ErrUnknownSource
	ErrSourceDisabled = service.ErrSourceDisabled
	ErrNotRunning     = service.ErrNotRunning
	ErrAlreadyStarted = errors.New("scheduler already started")
)

type phase int

const (
	phaseNew phase = iota
	phaseRunning
	phaseStopped
)

type completion struct {
	id  models.SourceID
	out models.Outcome
}

type commandKind int

const (
	cmdRefresh commandKind = iota
	cmdStatuses
)

type command struct {
	kind  commandKind
	id    models.SourceID
	reply chan commandResult
}

type commandResult struct {
	err   error
	infos []service.SourceInfo
}

// Scheduler drives every source on its own cadence with at most one
// request in flight per source.
//
// A single goroutine owns all source state and is the only caller of
// store.Apply. Fetches run on their own goroutines and report back over a
// channel; tickers and external commands do the same.
//
// Refresh is the one exception to the in-flight rule: it cancels the
// current request and dispatches the next generation at once, so a fetcher
// that is slow to abort may briefly run alongside its replacement. The
// abandoned request can never be applied; its completion carries an old
// generation and is counted as stale. Ticks never supersede.
type Scheduler struct {
	fetcher Fetcher
	store   repository.SnapshotStore
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time

	order   []models.SourceID
	sources map[models.SourceID]*source
	initial []service.SourceInfo

	ticks       chan models.SourceID
	completions chan completion
	commands    chan command
	quit        chan struct{}
	tickStop    chan struct{}
	done        chan struct{}

	rootCancel context.CancelFunc
	tickWG     sync.WaitGroup

	mu       sync.Mutex
	phase    phase
	final    []service.SourceInfo
	quitOnce sync.Once
}

var _ service.Controller = (*Scheduler)(nil)

type Option func(*Scheduler)

func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler validates specs and prepares one idle source per spec.
func NewScheduler(specs []Spec, fetcher Fetcher, store repository.SnapshotStore, opts ...Option) (*Scheduler, error) {
	if fetcher == nil || store == nil {
		return nil, errors.New("poller: fetcher and store are required")
	}

	s := &Scheduler{
		fetcher:     fetcher,
		store:       store,
		metrics:     repository.NopMetrics{},
		log:         logger.Nop(),
		now:         time.Now,
		sources:     make(map[models.SourceID]*source, len(specs)),
		ticks:       make(chan models.SourceID),
		completions: make(chan completion),
		commands:    make(chan command),
		quit:        make(chan struct{}),
		tickStop:    make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, spec := range specs {
		if _, dup := s.sources[spec.ID]; dup {
			return nil, fmt.Errorf("poller: duplicate source %q", spec.ID)
		}
		if spec.Enabled && spec.Cadence <= 0 {
			return nil, fmt.Errorf("poller: source %q: cadence must be positive", spec.ID)
		}
		s.sources[spec.ID] = newSource(spec)
		s.order = append(s.order, spec.ID)
	}
	s.initial = s.infos()
	return s, nil
}

// Start dispatches every enabled source once and then keeps each on its
// cadence until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case phaseRunning:
		return ErrAlreadyStarted
	case phaseStopped:
		return ErrNotRunning
	}
	s.phase = phaseRunning

	rootCtx, cancel := context.WithCancel(ctx)
	s.rootCancel = cancel
	go s.run(rootCtx)
	return nil
}

// Stop cancels in-flight requests and returns once no further store
// writes can happen. It does not wait for fetches to return: one that
// ignores cancellation finishes on its own and its result is dropped. It
// is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.phase == phaseNew {
		s.phase = phaseStopped
		s.final = stoppedInfos(s.initial)
		close(s.done)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.quitOnce.Do(func() { close(s.quit) })
	<-s.done
}

// Done is closed once the event loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Refresh aborts any in-flight request for id and dispatches a new one
// immediately, without waiting for the aborted one to return. The aborted
// request's completion is discarded as stale.
func (s *Scheduler) Refresh(ctx context.Context, id models.SourceID) error {
	if _, ok := s.sources[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	res, err := s.send(ctx, command{kind: cmdRefresh, id: id})
	if err != nil {
		return err
	}
	return res.err
}

// Statuses reports every source in configured order. Before Start it
// returns the idle statuses, after Stop the final ones.
func (s *Scheduler) Statuses(ctx context.Context) ([]service.SourceInfo, error) {
	s.mu.Lock()
	switch s.phase {
	case phaseNew:
		s.mu.Unlock()
		return cloneInfos(s.initial), nil
	case phaseStopped:
		final := s.final
		s.mu.Unlock()
		return cloneInfos(final), nil
	}
	s.mu.Unlock()

	res, err := s.send(ctx, command{kind: cmdStatuses})
	if errors.Is(err, ErrNotRunning) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return cloneInfos(s.final), nil
	}
	if err != nil {
		return nil, err
	}
	return res.infos, nil
}

func (s *Scheduler) send(ctx context.Context, cmd command) (commandResult, error) {
	s.mu.Lock()
	p := s.phase
	s.mu.Unlock()
	if p != phaseRunning {
		return commandResult{}, ErrNotRunning
	}

	cmd.reply = make(chan commandResult, 1)
	select {
	case s.commands <- cmd:
	case <-s.done:
		return commandResult{}, ErrNotRunning
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res, nil
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	s.log.Info("scheduler started", logger.Int("sources", len(s.order)))
	for _, id := range s.order {
		src := s.sources[id]
		if !src.spec.Enabled {
			continue
		}
		s.dispatch(ctx, id)
		s.startTicker(src.spec)
	}

	for {
		select {
		case <-s.quit:
			s.shutdown()
			return
		case <-ctx.Done():
			s.shutdown()
			return
		case id := <-s.ticks:
			s.onTick(ctx, id)
		case c := <-s.completions:
			s.onCompletion(c)
		case cmd := <-s.commands:
			s.onCommand(ctx, cmd)
		}
	}
}

func (s *Scheduler) startTicker(spec Spec) {
	s.tickWG.Add(1)
	go func() {
		defer s.tickWG.Done()
		t := time.NewTicker(spec.Cadence)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				select {
				case s.ticks <- spec.ID:
				case <-s.tickStop:
					return
				}
			case <-s.tickStop:
				return
			}
		}
	}()
}

func (s *Scheduler) onTick(ctx context.Context, id models.SourceID) {
	src := s.sources[id]
	if src.inFlight {
		src.skipped++
		s.metrics.RecordSkippedTick(id)
		s.log.Debug("tick skipped, request in flight",
			logger.String("source", string(id)),
			logger.Uint64("generation", src.generation),
		)
		return
	}
	s.dispatch(ctx, id)
}

// dispatch supersedes any in-flight request for id and starts a new one
// stamped with the next generation.
func (s *Scheduler) dispatch(ctx context.Context, id models.SourceID) {
	src := s.sources[id]
	if src.cancel != nil {
		src.cancel()
	}
	src.generation++
	if !src.inFlight {
		src.settled = src.state
	}
	src.state = models.StateFetching
	src.inFlight = true
	src.lastAttemptAt = s.now()

	reqCtx, cancel := context.WithCancel(ctx)
	src.cancel = cancel
	req := Request{Spec: src.spec, Generation: src.generation}

	go func() {
		out := s.fetcher.Fetch(reqCtx, req)
		select {
		case s.completions <- completion{id: id, out: out}:
		case <-s.done:
		}
	}()
}

func (s *Scheduler) onCompletion(c completion) {
	src := s.sources[c.id]
	if c.out.Generation != src.generation {
		src.stale++
		s.metrics.RecordStale(c.id, models.ErrStale)
		s.log.Debug("dropping stale completion",
			logger.String("source", string(c.id)),
			logger.Uint64("generation", c.out.Generation),
			logger.Uint64("current", src.generation),
		)
		return
	}

	src.inFlight = false
	if src.cancel != nil {
		src.cancel()
		src.cancel = nil
	}

	if c.out.Err != nil && c.out.Err.Kind == models.ErrCancelled {
		src.state = src.settled
		s.metrics.RecordStale(c.id, models.ErrCancelled)
		s.log.Debug("request cancelled", logger.String("source", string(c.id)))
		return
	}

	s.store.Apply(c.id, c.out)
	src.latency = c.out.Latency
	s.metrics.RecordLatency(c.id, c.out.Latency.Seconds())

	if c.out.Err != nil {
		src.state = models.StateError
		src.lastErr = c.out.Err
		s.metrics.RecordPoll(c.id, string(c.out.Err.Kind))
		s.metrics.SetSourceUp(c.id, false)
		s.log.Warn("poll failed",
			logger.String("source", string(c.id)),
			logger.String("kind", string(c.out.Err.Kind)),
			logger.Int("status_code", c.out.Err.StatusCode),
			logger.Error(c.out.Err),
		)
	} else {
		src.state = models.StateOK
		src.lastErr = nil
		src.lastSuccessAt = c.out.At
		s.metrics.RecordPoll(c.id, "ok")
		s.metrics.SetSourceUp(c.id, true)
	}
	src.settled = src.state
}

func (s *Scheduler) onCommand(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdRefresh:
		src := s.sources[cmd.id]
		if !src.spec.Enabled {
			cmd.reply <- commandResult{err: fmt.Errorf("%w: %q", ErrSourceDisabled, cmd.id)}
			return
		}
		s.log.Info("manual refresh",
			logger.String("source", string(cmd.id)),
			logger.Bool("superseded", src.inFlight),
		)
		s.dispatch(ctx, cmd.id)
		cmd.reply <- commandResult{}
	case cmdStatuses:
		cmd.reply <- commandResult{infos: s.infos()}
	}
}

// shutdown runs on the loop goroutine. Once it returns no completion is
// ever applied: generations have moved on and the loop has exited.
func (s *Scheduler) shutdown() {
	for _, id := range s.order {
		src := s.sources[id]
		if src.cancel != nil {
			src.cancel()
			src.cancel = nil
		}
		src.generation++
		src.inFlight = false
		src.state = models.StateStopped
	}
	s.rootCancel()
	close(s.tickStop)
	s.tickWG.Wait()

	final := s.infos()
	s.mu.Lock()
	s.phase = phaseStopped
	s.final = final
	s.mu.Unlock()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) infos() []service.SourceInfo {
	out := make([]service.SourceInfo, 0, len(s.order))
	for _, id := range s.order {
		src := s.sources[id]
		info := service.SourceInfo{
			SourceStatus: models.SourceStatus{
				ID:            id,
				State:         src.state,
				Generation:    src.generation,
				LastSuccessAt: src.lastSuccessAt,
				LastAttemptAt: src.lastAttemptAt,
				Latency:       src.latency,
				Cadence:       src.spec.Cadence,
			},
			InFlight:     src.inFlight,
			SkippedTicks: src.skipped,
			StaleDropped: src.stale,
			Enabled:      src.spec.Enabled,
		}
		if src.lastErr != nil {
			info.LastError = src.lastErr.Error()
			info.LastErrorKind = src.lastErr.Kind
		}
		out = append(out, info)
	}
	return out
}

func stoppedInfos(in []service.SourceInfo) []service.SourceInfo {
	out := cloneInfos(in)
	for i := range out {
		out[i].State = models.StateStopped
	}
	return out
}

func cloneInfos(in []service.SourceInfo) []service.SourceInfo {
	out := make([]service.SourceInfo, len(in))
	copy(out, in)
	return out
}
