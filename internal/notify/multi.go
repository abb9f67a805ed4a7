package notify

import (
	"context"
	"errors"

	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// Multi fans every call out to all sinks and joins their errors.
type Multi []schedule.Notifier

func (m Multi) RemoveAll(ctx context.Context) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.RemoveAll(ctx))
	}
	return errors.Join(errs...)
}

func (m Multi) Add(ctx context.Context, t schedule.Trigger) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Add(ctx, t))
	}
	return errors.Join(errs...)
}
