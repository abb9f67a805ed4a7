package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// Notifier is the collaborator that owns pending notifications.
type Notifier interface {
	// RemoveAll drops every pending trigger.
	RemoveAll(ctx context.Context) error
	// Add registers one trigger, replacing any with the same identifier.
	Add(ctx context.Context, t Trigger) error
}

// Options is the configuration snapshot a schedule is built from.
type Options struct {
	Azan  prayer.Offsets
	Mutes MuteConfig
	// Dhikr adds the remembrance reminders to the azan triggers.
	Dhikr bool
}

// Plan returns the full trigger set for a day.
func Plan(t prayer.Times, opts Options) []Trigger {
	triggers := Translate(t, opts.Azan, opts.Mutes)
	if opts.Dhikr {
		triggers = append(triggers, DhikrTriggers(t, opts.Azan)...)
	}
	return triggers
}

// Result reports the outcome of a Sync.
type Result struct {
	Scheduled []string
	Failed    map[string]error
}

// OK reports whether every trigger was registered.
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Scheduler replaces a notifier's pending triggers with a freshly planned set.
type Scheduler struct {
	notifier Notifier
	log      zerolog.Logger
}

// New returns a Scheduler that registers triggers with n.
func New(n Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{notifier: n, log: log}
}

// Sync removes every pending trigger and registers the planned set.
// Registrations run concurrently; a failed registration is logged and
// recorded in the Result without stopping the others. An error is returned
// only when the existing triggers could not be removed.
func (s *Scheduler) Sync(ctx context.Context, t prayer.Times, opts Options) (Result, error) {
	if err := s.notifier.RemoveAll(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to remove pending triggers: %w", err)
	}

	triggers := Plan(t, opts)
	res := Result{Failed: make(map[string]error)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, tr := range triggers {
		wg.Add(1)
		go func(tr Trigger) {
			defer wg.Done()
			err := s.notifier.Add(ctx, tr)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error().Err(err).Str("identifier", tr.Identifier).Msg("failed to schedule notification")
				res.Failed[tr.Identifier] = err
				return
			}
			res.Scheduled = append(res.Scheduled, tr.Identifier)
		}(tr)
	}
	wg.Wait()

	sort.Strings(res.Scheduled)
	s.log.Debug().
		Int("scheduled", len(res.Scheduled)).
		Int("failed", len(res.Failed)).
		Str("date", t.Date.Format("2006-01-02")).
		Msg("notifications synced")
	return res, nil
}

func minutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
