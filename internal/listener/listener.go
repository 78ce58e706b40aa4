// Package listener runs the long-lived loop that applies inbound
// calendar changes. The loop drains everything queued, then blocks
// until signalled; a signal arriving mid-drain is remembered, so no
// wakeup is ever lost.
package listener

import (
	"context"
	"errors"
	"sync"

	"github.com/resplan/resplan-backend/internal/calendar"
	"github.com/resplan/resplan-backend/internal/model"
	"go.uber.org/zap"
)

type Message struct {
	Principal string
	Event     *model.CalendarEvent
}

type syncEngine interface {
	ProcessInbound(ctx context.Context, session calendar.Session, event *model.CalendarEvent) error
}

type sessionCache interface {
	ForPrincipal(ctx context.Context, principal string) (calendar.Session, error)
}

type Listener struct {
	logger   *zap.SugaredLogger
	sessions sessionCache
	engine   syncEngine

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []*Message
	signalled bool
	stopped   bool
}

func NewListener(logger *zap.SugaredLogger, sessions sessionCache, engine syncEngine) *Listener {
	l := &Listener{
		logger:   logger,
		sessions: sessions,
		engine:   engine,
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Enqueue adds one inbound message and signals the loop. Safe to call
// while the loop is mid-drain: the pending flag is rechecked before the
// loop ever blocks.
func (l *Listener) Enqueue(m *Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}
	l.queue = append(l.queue, m)
	l.signalled = true
	l.cond.Signal()
}

// Stop requests cooperative shutdown and unblocks a waiting loop. No
// further messages are processed once it returns.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopped = true
	l.cond.Broadcast()
}

// Run processes messages until stopped. Failures are per-message: one
// bad message is logged and the drain continues.
func (l *Listener) Run(ctx context.Context) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			l.Stop()
		case <-stop:
		}
	}()

	for {
		l.mu.Lock()
		for !l.signalled && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped {
			l.mu.Unlock()
			return
		}
		l.signalled = false
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, m := range batch {
			l.process(ctx, m)
		}
	}
}

func (l *Listener) process(ctx context.Context, m *Message) {
	session, err := l.sessions.ForPrincipal(ctx, m.Principal)
	if err != nil {
		l.logger.Errorw("failed to open calendar session",
			"principal", m.Principal, "err", err)
		return
	}

	if err := l.engine.ProcessInbound(ctx, session, m.Event); err != nil {
		var conflict *model.SyncConflict
		if errors.As(err, &conflict) {
			l.logger.Infow("inbound change rejected",
				"unique_id", conflict.UniqueID, "reason", conflict.Reason)
			return
		}
		l.logger.Errorw("inbound change failed",
			"unique_id", m.Event.UniqueID, "err", err)
	}
}
