package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const segmentPrefix = "segment_"

// SegmentFileName returns the zero-padded artifact name for index, e.g. segment_007.mp4.
// The numeric suffix equals the segment index; the merger relies on it when re-sorting.
func SegmentFileName(index int, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s%03d%s", segmentPrefix, index, ext)
}

func SegmentPath(dir string, index int, ext string) string {
	return filepath.Join(dir, SegmentFileName(index, ext))
}

// ParseSegmentIndex extracts the index from a path produced by SegmentPath.
func ParseSegmentIndex(path string) (int, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if !strings.HasPrefix(base, segmentPrefix) {
		return 0, fmt.Errorf("not a segment artifact: %s", path)
	}
	index, err := strconv.Atoi(strings.TrimPrefix(base, segmentPrefix))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid segment index in %s", path)
	}
	return index, nil
}
