package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port"
)

// fakeCodec writes small text artifacts instead of running ffmpeg.
type fakeCodec struct {
	duration float64
	probeErr error

	// failAt makes Transform fail for that segment index; -1 disables it.
	failAt int
	// blockAfterFail makes segments above failAt wait for cancellation.
	blockAfterFail bool
	delay          func(index int) time.Duration

	mu        sync.Mutex
	completed []int
	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeCodec(duration float64) *fakeCodec {
	return &fakeCodec{duration: duration, failAt: -1}
}

func (f *fakeCodec) Extension() string { return ".mp4" }

func (f *fakeCodec) Probe(_ context.Context, inputPath string) (*domain.ProbeResult, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return &domain.ProbeResult{
		Format:  domain.ProbeFormat{Duration: strconv.FormatFloat(f.duration, 'f', 3, 64)},
		Streams: []domain.ProbeStream{{CodecType: "video"}},
	}, nil
}

func (f *fakeCodec) ExtractSegment(_ context.Context, seg domain.Segment, outputPath string) error {
	return os.WriteFile(outputPath, []byte(fmt.Sprintf("segment %d [%.3f,%.3f)\n", seg.Index, seg.Start, seg.End)), 0644)
}

func (f *fakeCodec) Transform(ctx context.Context, inputPath, outputPath string) error {
	idx, err := domain.ParseSegmentIndex(inputPath)
	if err != nil {
		return err
	}

	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		cur := f.maxActive.Load()
		if n <= cur || f.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.failAt >= 0 && idx == f.failAt {
		return fmt.Errorf("exit status 1")
	}
	if f.blockAfterFail && f.failAt >= 0 && idx > f.failAt {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.delay != nil {
		select {
		case <-time.After(f.delay(idx)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte("gray "+string(data)), 0644); err != nil {
		return err
	}

	f.mu.Lock()
	f.completed = append(f.completed, idx)
	f.mu.Unlock()
	return nil
}

func (f *fakeCodec) Concat(_ context.Context, inputPaths []string, outputPath string) error {
	var b strings.Builder
	for _, p := range inputPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		b.Write(data)
	}
	return os.WriteFile(outputPath, []byte(b.String()), 0644)
}

func (f *fakeCodec) completionOrder() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.completed...)
}

var _ port.MediaCodec = (*fakeCodec)(nil)

// materialize writes n segment files into dir, as the segmenter would.
func materialize(dir string, n int) ([]domain.Segment, error) {
	segments := make([]domain.Segment, n)
	for i := range segments {
		path := domain.SegmentPath(dir, i, ".mp4")
		if err := os.WriteFile(path, []byte(fmt.Sprintf("segment %d\n", i)), 0644); err != nil {
			return nil, err
		}
		segments[i] = domain.Segment{Index: i, Start: float64(i), End: float64(i + 1), Path: path}
	}
	return segments, nil
}

// recorder collects published progress events.
type recorder struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (r *recorder) Publish(_ string, event domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) phase(phase domain.PipelineState) []domain.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProgressEvent
	for _, e := range r.events {
		if e.Phase == phase {
			out = append(out, e)
		}
	}
	return out
}
