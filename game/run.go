package game

import (
	"context"
	"errors"

	"github.com/pthm-cable/swarm/gesture"
)

// RunHeadless advances the swarm without a display until ctx is done or
// maxTicks updates have run (0 = unlimited). Gesture input is polled from
// src once per tick; a nil src feeds the neutral snapshot.
func RunHeadless(ctx context.Context, s *Swarm, src *gesture.Latest, maxTicks uint64) error {
	for maxTicks == 0 || s.Tick() < maxTicks {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		default:
		}

		snap := gesture.Neutral()
		if src != nil {
			snap = src.Load()
		}
		if err := s.Update(snap); err != nil {
			return err
		}
		s.ClearDirty()
	}
	return nil
}
