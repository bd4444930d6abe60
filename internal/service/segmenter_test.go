package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func probeOf(duration string) *domain.ProbeResult {
	return &domain.ProbeResult{
		Format:  domain.ProbeFormat{Duration: duration},
		Streams: []domain.ProbeStream{{CodecType: "video"}, {CodecType: "audio"}},
	}
}

type rejectAll struct{}

func (rejectAll) ValidateSource(string) error { return errors.New("not a media file") }

func TestSegmenter_Split(t *testing.T) {
	ws, err := AcquireWorkspace(t.TempDir())
	require.NoError(t, err)

	codec := mocks.NewMediaCodecMock(t)
	codec.EXPECT().Probe(mock.Anything, "/in/clip.mp4").Return(probeOf("15.000000"), nil).Once()
	codec.EXPECT().Extension().Return(".mp4")
	codec.EXPECT().ExtractSegment(mock.Anything, mock.AnythingOfType("domain.Segment"), mock.AnythingOfType("string")).
		RunAndReturn(func(_ context.Context, seg domain.Segment, out string) error {
			return os.WriteFile(out, []byte("x"), 0644)
		}).Times(5)

	rec := &recorder{}
	s := NewSegmenter(codec, nil)
	segments, total, err := s.Split(context.Background(), "/in/clip.mp4", 10, ws, phaseProgress(rec, "run", domain.StateSplit))
	require.NoError(t, err)

	assert.Equal(t, 15.0, total)
	require.Len(t, segments, 5, "short asset: floor(15/4)=3s segments")
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, float64(i*3), seg.Start)
		assert.Equal(t, domain.SegmentPath(ws.SegmentsDir, i, ".mp4"), seg.Path)
		assert.FileExists(t, seg.Path)
		assert.Equal(t, "/in/clip.mp4", seg.SourcePath)
	}

	events := rec.phase(domain.StateSplit)
	require.Len(t, events, 5)
	assert.Equal(t, 0.2, events[0].Fraction)
	assert.Equal(t, 1.0, events[4].Fraction)
}

func TestSegmenter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(codec *mocks.MediaCodecMock)
		wantErr error
	}{
		{
			name: "probe fails",
			setup: func(codec *mocks.MediaCodecMock) {
				codec.EXPECT().Probe(mock.Anything, mock.Anything).Return(nil, errors.New("ffprobe failed: exit status 1")).Once()
			},
			wantErr: domain.ErrSourceUnreadable,
		},
		{
			name: "no media streams",
			setup: func(codec *mocks.MediaCodecMock) {
				codec.EXPECT().Probe(mock.Anything, mock.Anything).Return(&domain.ProbeResult{}, nil).Once()
			},
			wantErr: domain.ErrSourceUnreadable,
		},
		{
			name: "zero duration",
			setup: func(codec *mocks.MediaCodecMock) {
				codec.EXPECT().Probe(mock.Anything, mock.Anything).Return(probeOf("0.000000"), nil).Once()
			},
			wantErr: domain.ErrEmptySource,
		},
		{
			name: "extraction fails midway",
			setup: func(codec *mocks.MediaCodecMock) {
				codec.EXPECT().Probe(mock.Anything, mock.Anything).Return(probeOf("30.0"), nil).Once()
				codec.EXPECT().Extension().Return(".mp4")
				codec.EXPECT().ExtractSegment(mock.Anything, mock.MatchedBy(func(s domain.Segment) bool { return s.Index == 0 }), mock.Anything).Return(nil).Once()
				codec.EXPECT().ExtractSegment(mock.Anything, mock.MatchedBy(func(s domain.Segment) bool { return s.Index == 1 }), mock.Anything).Return(errors.New("exit status 1")).Once()
			},
			wantErr: domain.ErrEncode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := AcquireWorkspace(t.TempDir())
			require.NoError(t, err)

			codec := mocks.NewMediaCodecMock(t)
			tt.setup(codec)

			segments, _, err := NewSegmenter(codec, nil).Split(context.Background(), "/in/clip.mp4", 10, ws, nil)
			assert.Nil(t, segments)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSegmenter_ValidatorRejectsBeforeProbe(t *testing.T) {
	codec := mocks.NewMediaCodecMock(t)

	_, err := NewSegmenter(codec, rejectAll{}).Probe(context.Background(), "/in/notes.txt")
	assert.ErrorIs(t, err, domain.ErrSourceUnreadable)
	codec.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
}
