package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/state"
)

const (
	DefaultFastInterval = 500 * time.Millisecond
	DefaultSlowInterval = 5 * time.Second

	inboxSize = 64
)

// Config tunes the supervisor. Zero intervals use the defaults.
type Config struct {
	UsePush      bool
	FastInterval time.Duration
	SlowInterval time.Duration
	// UpgradeCooldown is the minimum time between two attempts to enter
	// Pushed. Zero attempts the upgrade on every successful slow poll.
	UpgradeCooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.FastInterval <= 0 {
		c.FastInterval = DefaultFastInterval
	}
	if c.SlowInterval <= 0 {
		c.SlowInterval = DefaultSlowInterval
	}
	if c.UpgradeCooldown < 0 {
		c.UpgradeCooldown = 0
	}
	return c
}

// Supervisor keeps a connection to the server alive, degrading from the push
// channel to fast polling to slow polling and back.
//
// The second group of fields is owned by the loop goroutine.
// Timer ticks, request completions and socket events reach the loop as
// closures tagged with the generation that issued them; a closure whose
// generation is no longer current is dropped.
type Supervisor struct {
	fetcher httpgd.StateFetcher
	cfg     Config
	store   *state.Store
	ctx     context.Context
	events  chan Event
	inbox   chan func()
	done    chan struct{}
	gen     atomic.Uint64
	now     func() time.Time

	mode        state.Mode
	connected   bool
	paused      bool
	last        *httpgd.RemoteState
	modeCancel  context.CancelFunc
	conn        httpgd.PushConn
	lastAttempt time.Time
	pending     []Event
}

// Start launches the supervisor loop in the background and returns
// immediately in the Closed mode. The loop exits when ctx is cancelled, after
// which the Events channel is closed.
func Start(ctx context.Context, fetcher httpgd.StateFetcher, cfg Config, store *state.Store) *Supervisor {
	if store == nil {
		store = &state.Store{}
	}
	s := &Supervisor{
		fetcher: fetcher,
		cfg:     cfg.withDefaults(),
		store:   store,
		ctx:     ctx,
		events:  make(chan Event),
		inbox:   make(chan func(), inboxSize),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	store.SetMode(state.Closed)
	go s.run()
	return s
}

// Events delivers notifications in the order they were produced. Delivery
// never blocks the loop; undelivered events queue until read.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Store exposes the published connection status.
func (s *Supervisor) Store() *state.Store {
	return s.store
}

// Mode returns the current connection mode.
func (s *Supervisor) Mode() state.Mode {
	return s.store.Snapshot().Mode
}

// Done is closed once the loop has exited.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Open leaves Closed for the preferred mode. It is a no-op in any other mode.
func (s *Supervisor) Open() {
	s.call(func() {
		if s.mode != state.Closed {
			return
		}
		s.last = nil
		glog.Infof("[sup] open push=%t", s.cfg.UsePush)
		if s.cfg.UsePush {
			s.enterMode(state.Pushed)
		} else {
			s.enterMode(state.FastPoll)
		}
	})
}

// Close tears down any timer or socket and returns to Closed. Completions of
// requests issued before Close are discarded even if they arrive later.
func (s *Supervisor) Close() {
	s.gen.Add(1)
	s.call(func() {
		s.enterMode(state.Closed)
	})
}

// Reconnect closes and reopens, starting again from the preferred mode.
func (s *Supervisor) Reconnect() {
	s.Close()
	s.Open()
}

// SetPaused suppresses the periodic state query while set. Timers keep running
// and entering Pushed still issues its seed query.
func (s *Supervisor) SetPaused(paused bool) {
	s.call(func() {
		s.paused = paused
		s.store.SetPaused(paused)
		glog.V(1).Infof("[sup] paused=%t", paused)
	})
}

func (s *Supervisor) run() {
	defer close(s.done)
	defer close(s.events)

	for {
		var out chan<- Event
		var next Event
		if len(s.pending) > 0 {
			out = s.events
			next = s.pending[0]
		}

		select {
		case <-s.ctx.Done():
			s.teardown()
			s.mode = state.Closed
			s.store.SetMode(state.Closed)
			return
		case fn := <-s.inbox:
			fn()
		case out <- next:
			s.pending[0] = nil
			s.pending = s.pending[1:]
		}
	}
}

// call runs fn on the loop and waits for it to finish.
func (s *Supervisor) call(fn func()) {
	ack := make(chan struct{})
	select {
	case s.inbox <- func() { fn(); close(ack) }:
	case <-s.done:
		return
	}
	select {
	case <-ack:
	case <-s.done:
	}
}

// post schedules fn on the loop if gen is still current when it runs.
func (s *Supervisor) post(gen uint64, fn func()) {
	s.postElse(gen, fn, nil)
}

// postElse is post with a release hook for resources carried by a stale callback.
func (s *Supervisor) postElse(gen uint64, fn, stale func()) {
	wrapped := func() {
		if current := s.gen.Load(); gen != current {
			glog.V(2).Infof("[sup] drop stale callback gen=%d current=%d", gen, current)
			if stale != nil {
				stale()
			}
			return
		}
		fn()
	}
	select {
	case s.inbox <- wrapped:
	case <-s.done:
		if stale != nil {
			stale()
		}
	}
}

func (s *Supervisor) emit(ev Event) {
	s.pending = append(s.pending, ev)
}

func (s *Supervisor) enterMode(mode state.Mode) {
	if s.mode == mode {
		return
	}
	s.teardown()
	gen := s.gen.Add(1)

	glog.Infof("[sup] mode %s -> %s", s.mode, mode)
	s.mode = mode
	s.store.SetMode(mode)
	s.emit(ModeChanged{Mode: mode})

	if mode == state.Closed {
		return
	}
	modeCtx, cancel := context.WithCancel(s.ctx)
	s.modeCancel = cancel

	switch mode {
	case state.FastPoll:
		s.startTimer(modeCtx, gen, s.cfg.FastInterval)
	case state.SlowPoll:
		s.startTimer(modeCtx, gen, s.cfg.SlowInterval)
	case state.Pushed:
		s.lastAttempt = s.now()
		s.connectPush(modeCtx, gen)
	}
}

// teardown releases the current mode's timer, in-flight requests and socket.
func (s *Supervisor) teardown() {
	if s.modeCancel != nil {
		s.modeCancel()
		s.modeCancel = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func (s *Supervisor) startTimer(ctx context.Context, gen uint64, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.post(gen, func() { s.pollState(ctx, gen) })
			}
		}
	}()
}

func (s *Supervisor) pollState(ctx context.Context, gen uint64) {
	if s.paused {
		glog.V(2).Infof("[sup] tick skipped while paused")
		return
	}
	go func() {
		remote, err := s.fetcher.FetchState(ctx)
		s.post(gen, func() { s.handleQuery(remote, err) })
	}()
}

// connectPush seeds state with one query, then opens the push channel.
func (s *Supervisor) connectPush(ctx context.Context, gen uint64) {
	go func() {
		remote, err := s.fetcher.FetchState(ctx)
		s.post(gen, func() { s.handleQuery(remote, err) })
		if err != nil {
			return
		}
		if ctx.Err() != nil || s.gen.Load() != gen {
			return
		}

		conn, err := s.fetcher.OpenPush(ctx)
		if err != nil {
			s.post(gen, func() { s.handlePushClosed(err) })
			return
		}
		if s.gen.Load() != gen {
			_ = conn.Close()
			return
		}
		s.postElse(gen,
			func() { s.handlePushOpen(ctx, gen, conn) },
			func() { _ = conn.Close() })
	}()
}

func (s *Supervisor) handleQuery(remote httpgd.RemoteState, err error) {
	if err != nil {
		glog.V(1).Infof("[sup] state query failed in %s: %v", s.mode, err)
		s.store.Update(nil, err)
		s.setConnected(false)
		s.enterMode(state.SlowPoll)
		return
	}

	s.store.Update(&remote, nil)
	s.setConnected(true)
	if s.mode == state.SlowPoll {
		s.upgrade()
	}
	s.checkState(remote)
}

func (s *Supervisor) upgrade() {
	if !s.cfg.UsePush {
		s.enterMode(state.FastPoll)
		return
	}
	if cooldown := s.cfg.UpgradeCooldown; cooldown > 0 {
		if since := s.now().Sub(s.lastAttempt); since < cooldown {
			glog.V(2).Infof("[sup] push upgrade deferred, last attempt %s ago", since)
			return
		}
	}
	s.enterMode(state.Pushed)
}

func (s *Supervisor) handlePushOpen(ctx context.Context, gen uint64, conn httpgd.PushConn) {
	if s.mode != state.Pushed {
		_ = conn.Close()
		return
	}
	glog.Infof("[sup] push channel open")
	s.conn = conn
	s.setConnected(true)

	go func() {
		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				s.post(gen, func() { s.handlePushClosed(err) })
				return
			}
			s.post(gen, func() { s.handlePushMessage(msg) })
			if ctx.Err() != nil {
				return
			}
		}
	}()
}

func (s *Supervisor) handlePushMessage(msg []byte) {
	remote, err := httpgd.DecodeState(msg)
	if err != nil {
		glog.Warningf("[sup] ignoring push message: %v", err)
		return
	}
	s.store.Update(&remote, nil)
	s.checkState(remote)
}

func (s *Supervisor) handlePushClosed(err error) {
	glog.Infof("[sup] push channel closed: %v", err)
	s.store.Update(nil, err)
	s.setConnected(false)
	s.enterMode(state.SlowPoll)
}

func (s *Supervisor) setConnected(connected bool) {
	if s.connected == connected {
		return
	}
	s.connected = connected
	s.store.SetConnected(connected)
	s.emit(ConnectivityChanged{Connected: connected})
}

// checkState emits StateChanged when remote differs from the last delivered snapshot.
func (s *Supervisor) checkState(remote httpgd.RemoteState) {
	if s.last != nil && s.last.Equal(remote) {
		return
	}
	snapshot := remote
	s.last = &snapshot
	s.emit(StateChanged{State: remote})
}
