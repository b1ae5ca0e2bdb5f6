package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
)

// changeChannel is the NOTIFY channel fed by the row-change triggers
// installed by the migrations (see fs/migrations).
const changeChannel = "operax_changes"

const (
	minReconnectInterval = 5 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listener turns Postgres LISTEN/NOTIFY row-change notifications into
// core.ChangeEvents. Events are coarse on purpose: consumers refetch and
// recompute; a dropped connection is re-established by lib/pq and the
// resulting gap is covered by the consumer's next full refetch.
type Listener struct {
	pql    *pq.Listener
	logger core.Logger
	events chan core.ChangeEvent
	done   chan struct{}
}

var _ core.ChangeListener = (*Listener)(nil)

func NewListener(conf *core.Config, logger core.Logger) (*Listener, error) {
	pql := pq.NewListener(
		connString(conf.Database.Name, false, conf),
		minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Error(fmt.Sprintf("change listener: %v", err), err)
			}
		},
	)
	if err := pql.Listen(changeChannel); err != nil {
		_ = pql.Close()
		return nil, errors.Wrap(err, "listening on change channel")
	}

	l := &Listener{
		pql:    pql,
		logger: logger,
		events: make(chan core.ChangeEvent, 64),
		done:   make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *Listener) run() {
	defer close(l.events)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ping.C:
			if err := l.pql.Ping(); err != nil {
				l.logger.Error(fmt.Sprintf("change listener ping: %v", err), err)
			}
		case n := <-l.pql.Notify:
			if n == nil { // reconnect marker
				continue
			}
			var ev core.ChangeEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				l.logger.Warn(fmt.Sprintf("change listener: bad payload %q: %v", n.Extra, err))
				continue
			}
			select {
			case l.events <- ev:
			default:
				// consumer is behind; coarse events make dropping safe,
				// the next delivered event triggers the same full refetch
			}
		}
	}
}

func (l *Listener) Events() <-chan core.ChangeEvent { return l.events }

func (l *Listener) Close() error {
	close(l.done)
	return l.pql.Close()
}
