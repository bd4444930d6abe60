package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func writeResults(t *testing.T, dir string, n int) []domain.ProcessingResult {
	t.Helper()
	results := make([]domain.ProcessingResult, n)
	for i := range results {
		path := domain.SegmentPath(dir, i, ".mp4")
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0644))
		results[i] = domain.ProcessingResult{Index: i, OutputPath: path}
	}
	return results
}

func TestMerger_SortsBeforeConcat(t *testing.T) {
	dir := t.TempDir()
	results := writeResults(t, dir, 4)
	shuffled := []domain.ProcessingResult{results[2], results[0], results[3], results[1]}
	out := filepath.Join(dir, "final", "final_output.mp4")

	codec := mocks.NewMediaCodecMock(t)
	codec.EXPECT().Concat(mock.Anything, mock.Anything, out).
		RunAndReturn(func(_ context.Context, inputs []string, output string) error {
			assert.Equal(t, []string{results[0].OutputPath, results[1].OutputPath, results[2].OutputPath, results[3].OutputPath}, inputs)
			return os.WriteFile(output, []byte("merged"), 0644)
		}).Once()

	finalPath, err := NewMerger(codec).Merge(context.Background(), shuffled, out)
	require.NoError(t, err)
	assert.Equal(t, out, finalPath)
	assert.FileExists(t, finalPath)
	assert.Equal(t, 2, shuffled[0].Index, "caller's slice is left untouched")
}

func TestMerger_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(results []domain.ProcessingResult) []domain.ProcessingResult
		concat error
	}{
		{
			name:   "no results",
			mutate: func([]domain.ProcessingResult) []domain.ProcessingResult { return nil },
		},
		{
			name: "name does not match index",
			mutate: func(r []domain.ProcessingResult) []domain.ProcessingResult {
				r[1].OutputPath, r[2].OutputPath = r[2].OutputPath, r[1].OutputPath
				return r
			},
		},
		{
			name: "artifact missing",
			mutate: func(r []domain.ProcessingResult) []domain.ProcessingResult {
				_ = os.Remove(r[2].OutputPath)
				return r
			},
		},
		{
			name: "failed result",
			mutate: func(r []domain.ProcessingResult) []domain.ProcessingResult {
				r[0].Err = errors.New("transform failed")
				return r
			},
		},
		{
			name:   "concat fails",
			mutate: func(r []domain.ProcessingResult) []domain.ProcessingResult { return r },
			concat: errors.New("ffmpeg: exit status 1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			results := tt.mutate(writeResults(t, dir, 3))
			out := filepath.Join(dir, "final_output.mp4")

			codec := mocks.NewMediaCodecMock(t)
			if tt.concat != nil {
				codec.EXPECT().Concat(mock.Anything, mock.Anything, out).
					RunAndReturn(func(_ context.Context, _ []string, output string) error {
						_ = os.WriteFile(output, []byte("partial"), 0644)
						return tt.concat
					}).Once()
			}

			finalPath, err := NewMerger(codec).Merge(context.Background(), results, out)
			assert.Empty(t, finalPath)
			assert.ErrorIs(t, err, domain.ErrMerge)
			assert.NoFileExists(t, out, "partial output removed")
		})
	}
}
