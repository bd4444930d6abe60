package domain

import (
	"fmt"
	"math"
)

// EffectiveSegmentDuration applies the short-asset floor rule: an asset shorter than
// two target segments is cut into quarters (at least one second each) instead of one
// oversized segment.
func EffectiveSegmentDuration(total, target float64) float64 {
	if total < 2*target {
		return math.Max(1, math.Floor(total/4))
	}
	return target
}

// MinSegmentDuration is the shortest tail planned as a segment of its own. ffmpeg cuts at
// millisecond precision, so a shorter tail is folded into the previous segment.
const MinSegmentDuration = 0.001

// SegmentCount is ceil(total/effective) for the effective duration of total and target,
// minus one when the last segment would be shorter than MinSegmentDuration.
func SegmentCount(total, target float64) int {
	if total <= 0 || target <= 0 {
		return 0
	}
	return segmentCount(total, EffectiveSegmentDuration(total, target))
}

func segmentCount(total, eff float64) int {
	n := int(math.Ceil(total / eff))
	if n > 1 && total-float64(n-1)*eff < MinSegmentDuration {
		n--
	}
	return n
}

// PlanSegments partitions [0, asset.Duration) into contiguous segments.
// Segment paths are left empty; the segmenter fills them once materialized.
func PlanSegments(asset Asset, target float64) ([]Segment, error) {
	if target <= 0 {
		return nil, fmt.Errorf("segment duration must be positive, got %v", target)
	}
	if asset.Duration <= 0 {
		return nil, fmt.Errorf("%w: asset %s has zero duration", ErrEmptySource, asset.Path)
	}

	eff := EffectiveSegmentDuration(asset.Duration, target)
	count := segmentCount(asset.Duration, eff)

	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		// start from i*eff rather than accumulating, so no float drift between neighbours
		start := float64(i) * eff
		if start >= asset.Duration {
			break
		}
		end := math.Min(float64(i+1)*eff, asset.Duration)
		if i == count-1 {
			end = asset.Duration
		}
		segments = append(segments, Segment{
			Index:      i,
			Start:      start,
			End:        end,
			SourcePath: asset.Path,
		})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments planned for %s", ErrEmptySource, asset.Path)
	}
	return segments, nil
}
