// Package speaker resolves the most probable diarization speaker for a text unit.
package speaker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"speech-transcript-formatter/internal/models"
	"speech-transcript-formatter/internal/service/timeline"
)

// Mode selects the resolution strategy. It is chosen once per run.
type Mode int

const (
	// OverlapMode matches word-level units by maximum temporal overlap.
	// Units with no overlapping turn resolve to Unknown.
	OverlapMode Mode = iota
	// MidpointMode matches segment-level units by the turn containing the
	// unit midpoint, falling back to the nearest turn.
	MidpointMode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case OverlapMode:
		return "overlap"
	case MidpointMode:
		return "midpoint"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", m)
	}
}

// ModeFor returns the mode matching the available timestamp granularity.
func ModeFor(g models.Granularity) Mode {
	if g == models.GranularityWord {
		return OverlapMode
	}
	return MidpointMode
}

// Options tunes the resolver.
type Options struct {
	// MaxMidpointDistance caps the nearest-turn fallback in MidpointMode, in
	// seconds. Zero means no cap.
	MaxMidpointDistance float64
}

// Resolver maps text units to speakers. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	mode  Mode
	index *timeline.Index
	opts  Options
}

// NewResolver creates a resolver over idx. A nil index behaves as an empty timeline.
func NewResolver(mode Mode, idx *timeline.Index, opts Options) *Resolver {
	if idx == nil {
		idx = timeline.New(nil)
	}
	return &Resolver{mode: mode, index: idx, opts: opts}
}

// Mode returns the strategy the resolver was built with.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// Resolve returns the speaker for u. It never returns models.NoSpeaker.
func (r *Resolver) Resolve(u models.TextUnit) models.Speaker {
	switch r.mode {
	case MidpointMode:
		return r.byMidpoint(u)
	default:
		return r.byOverlap(u)
	}
}

func (r *Resolver) byOverlap(u models.TextUnit) models.Speaker {
	best, _, ok := r.index.BestOverlap(u.Start, u.End)
	if !ok {
		return models.UnknownSpeaker
	}
	return models.KnownSpeaker(best.Speaker)
}

func (r *Resolver) byMidpoint(u models.TextUnit) models.Speaker {
	mid := u.Midpoint()
	if turn, ok := r.index.Containing(mid); ok {
		return models.KnownSpeaker(turn.Speaker)
	}
	turn, dist, ok := r.index.Nearest(mid)
	if !ok {
		return models.UnknownSpeaker
	}
	if r.opts.MaxMidpointDistance > 0 && dist > r.opts.MaxMidpointDistance {
		return models.UnknownSpeaker
	}
	return models.KnownSpeaker(turn.Speaker)
}

// ResolveAll resolves every unit and returns attributions in input order.
// With workers > 1 the units are split into contiguous chunks resolved
// concurrently; each chunk writes only its own slice range.
func (r *Resolver) ResolveAll(ctx context.Context, units []models.TextUnit, workers int) ([]models.Attribution, error) {
	out := make([]models.Attribution, len(units))
	if workers <= 1 || len(units) < 2*workers {
		for i, u := range units {
			out[i] = models.Attribution{Unit: u, Speaker: r.Resolve(u)}
		}
		return out, nil
	}

	chunk := (len(units) + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(units); lo += chunk {
		hi := min(lo+chunk, len(units))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = models.Attribution{Unit: units[i], Speaker: r.Resolve(units[i])}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
