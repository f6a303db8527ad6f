package gesture

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
)

// Frame is one recorded snapshot as a CSV row.
type Frame struct {
	Tick int `csv:"tick"`

	H0Present bool    `csv:"h0_present"`
	H0X       float32 `csv:"h0_x"`
	H0Y       float32 `csv:"h0_y"`
	H0RotZ    float32 `csv:"h0_rot_z"`
	H0RotX    float32 `csv:"h0_rot_x"`
	H0Pinch   float32 `csv:"h0_pinch"`
	H0Fingers int     `csv:"h0_fingers"`

	H1Present bool    `csv:"h1_present"`
	H1X       float32 `csv:"h1_x"`
	H1Y       float32 `csv:"h1_y"`
	H1RotZ    float32 `csv:"h1_rot_z"`
	H1RotX    float32 `csv:"h1_rot_x"`
	H1Pinch   float32 `csv:"h1_pinch"`
	H1Fingers int     `csv:"h1_fingers"`
}

// Snapshot converts the row back into a snapshot.
func (f Frame) Snapshot() Snapshot {
	return Snapshot{Hands: [2]Hand{
		{Present: f.H0Present, X: f.H0X, Y: f.H0Y, RotationZ: f.H0RotZ, RotationX: f.H0RotX, Pinch: f.H0Pinch, FingerCount: f.H0Fingers},
		{Present: f.H1Present, X: f.H1X, Y: f.H1Y, RotationZ: f.H1RotZ, RotationX: f.H1RotX, Pinch: f.H1Pinch, FingerCount: f.H1Fingers},
	}}
}

// NewFrame records s at the given tick.
func NewFrame(tick int, s Snapshot) Frame {
	a, b := s.Hands[0], s.Hands[1]
	return Frame{
		Tick:      tick,
		H0Present: a.Present, H0X: a.X, H0Y: a.Y, H0RotZ: a.RotationZ, H0RotX: a.RotationX, H0Pinch: a.Pinch, H0Fingers: a.FingerCount,
		H1Present: b.Present, H1X: b.X, H1Y: b.Y, H1RotZ: b.RotationZ, H1RotX: b.RotationX, H1Pinch: b.Pinch, H1Fingers: b.FingerCount,
	}
}

// ReadFrames parses recorded frames from CSV.
func ReadFrames(r io.Reader) ([]Frame, error) {
	var rows []*Frame
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing gesture frames: %w", err)
	}
	frames := make([]Frame, len(rows))
	for i, row := range rows {
		frames[i] = *row
	}
	return frames, nil
}

// LoadFrames reads a recorded gesture CSV file.
func LoadFrames(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gesture recording: %w", err)
	}
	defer f.Close()
	return ReadFrames(f)
}

// WriteFrames writes frames as CSV with a header row.
func WriteFrames(w io.Writer, frames []Frame) error {
	rows := make([]*Frame, len(frames))
	for i := range frames {
		rows[i] = &frames[i]
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing gesture frames: %w", err)
	}
	return nil
}

// Replay is a producer that publishes recorded frames into a Latest at a
// fixed rate, standing in for a live hand tracker.
type Replay struct {
	frames   []Frame
	interval time.Duration
	loop     bool
}

// NewReplay creates a replay publishing one frame per interval. With loop
// set the recording restarts after the last frame.
func NewReplay(frames []Frame, interval time.Duration, loop bool) *Replay {
	if interval <= 0 {
		interval = time.Second / 30
	}
	return &Replay{frames: frames, interval: interval, loop: loop}
}

// Run publishes frames until the recording ends or ctx is cancelled. It is
// meant to run on its own goroutine. A finished recording leaves the hands
// absent.
func (r *Replay) Run(ctx context.Context, dst *Latest) error {
	if len(r.frames) == 0 {
		return nil
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	i := 0
	for {
		dst.Store(r.frames[i].Snapshot())
		i++
		if i == len(r.frames) {
			if !r.loop {
				// Hold the last frame for one interval before releasing.
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
				dst.Store(Neutral())
				return nil
			}
			i = 0
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
