package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port"
)

var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("path contains null byte")
)

const (
	defaultPreset = "veryfast"
	defaultCRF    = 23
	extension     = ".mp4"

	// stderrTail bounds how much ffmpeg output ends up in an error message
	stderrTail = 512
)

type Options struct {
	FFmpegPath  string
	FFprobePath string
	Preset      string
	CRF         int
	// Threads is passed to the encoder; 0 lets ffmpeg decide.
	Threads int
}

// Converter drives the ffmpeg and ffprobe binaries. Every call spawns its own process,
// so concurrent calls share nothing but the filesystem.
type Converter struct {
	ffmpegPath  string
	ffprobePath string
	preset      string
	crf         int
	threads     int
}

func NewConverter(opts Options) *Converter {
	c := &Converter{
		ffmpegPath:  opts.FFmpegPath,
		ffprobePath: opts.FFprobePath,
		preset:      opts.Preset,
		crf:         opts.CRF,
		threads:     opts.Threads,
	}
	if c.ffmpegPath == "" {
		c.ffmpegPath = "ffmpeg"
	}
	if c.ffprobePath == "" {
		c.ffprobePath = "ffprobe"
	}
	if c.preset == "" {
		c.preset = defaultPreset
	}
	if c.crf <= 0 {
		c.crf = defaultCRF
	}
	return c
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	return nil
}

func (c *Converter) Extension() string {
	return extension
}

// ExtractSegment cuts seg out of its source. A partial output is removed on failure.
func (c *Converter) ExtractSegment(ctx context.Context, seg domain.Segment, outputPath string) error {
	if err := validatePath(seg.SourcePath); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validatePath(outputPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if seg.End <= seg.Start {
		return fmt.Errorf("segment %d has empty range [%v, %v)", seg.Index, seg.Start, seg.End)
	}
	return c.produce(ctx, outputPath, c.extractArgs(seg, outputPath))
}

func (c *Converter) extractArgs(seg domain.Segment, outputPath string) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(seg.Start),
		"-i", seg.SourcePath,
		"-t", formatSeconds(seg.Duration()),
	}
	args = append(args, c.videoArgs()...)
	args = append(args,
		"-c:a", "aac",
		"-b:a", "128k",
		"-avoid_negative_ts", "make_zero",
		"-y", outputPath,
	)
	return args
}

// Transform renders the input in grayscale. Audio is copied untouched. A partial output
// is removed on failure, including when ctx kills the process.
func (c *Converter) Transform(ctx context.Context, inputPath, outputPath string) error {
	if err := validatePath(inputPath); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validatePath(outputPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	return c.produce(ctx, outputPath, c.transformArgs(inputPath, outputPath))
}

func (c *Converter) transformArgs(inputPath, outputPath string) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", inputPath,
		"-vf", "format=gray,format=yuv420p",
	}
	args = append(args, c.videoArgs()...)
	args = append(args,
		"-c:a", "copy",
		"-y", outputPath,
	)
	return args
}

func (c *Converter) videoArgs() []string {
	args := []string{
		"-c:v", "libx264",
		"-preset", c.preset,
		"-crf", strconv.Itoa(c.crf),
		"-pix_fmt", "yuv420p",
	}
	if c.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(c.threads))
	}
	return args
}

// Concat joins inputPaths in the given order with the concat demuxer. The list file
// lives next to the output and is removed on every path; a partial output is removed on failure.
func (c *Converter) Concat(ctx context.Context, inputPaths []string, outputPath string) (err error) {
	if len(inputPaths) == 0 {
		return errors.New("nothing to concatenate")
	}
	if err := validatePath(outputPath); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	list, err := os.CreateTemp(filepath.Dir(outputPath), "concat-*.txt")
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = os.Remove(list.Name()) }()

	if err := writeConcatList(list, inputPaths); err != nil {
		_ = list.Close()
		return err
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("close concat list: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(outputPath)
		}
	}()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", list.Name(),
		"-c", "copy",
		"-movflags", "+faststart",
		"-y", outputPath,
	}
	return c.run(ctx, c.ffmpegPath, args...)
}

func writeConcatList(w *os.File, inputPaths []string) error {
	var buf bytes.Buffer
	for _, p := range inputPaths {
		if err := validatePath(p); err != nil {
			return fmt.Errorf("invalid concat input: %w", err)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		fmt.Fprintf(&buf, "file '%s'\n", escapeConcatPath(abs))
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// escapeConcatPath escapes single quotes for the concat demuxer's quoted syntax.
func escapeConcatPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}

func (c *Converter) Probe(ctx context.Context, inputPath string) (*domain.ProbeResult, error) {
	if err := validatePath(inputPath); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}
	cmd := exec.CommandContext(ctx, c.ffprobePath, args...)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result domain.ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	result.RawJSON = string(output)

	return &result, nil
}

// produce runs ffmpeg to write outputPath and removes whatever it left behind on error.
func (c *Converter) produce(ctx context.Context, outputPath string, args []string) (err error) {
	defer func() {
		if err != nil {
			_ = os.Remove(outputPath)
		}
	}()
	return c.run(ctx, c.ffmpegPath, args...)
}

func (c *Converter) run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > stderrTail {
			msg = msg[len(msg)-stderrTail:]
		}
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
		}
		return fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

var _ port.MediaCodec = (*Converter)(nil)
