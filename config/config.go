package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is loaded from an optional YAML file (SEGBENCH_CONFIG) and then overridden by
// environment variables.
type Config struct {
	InputPath       string  `yaml:"input_path"`
	OutputPath      string  `yaml:"output_path"`
	SegmentDuration float64 `yaml:"segment_duration"`
	WorkDir         string  `yaml:"work_dir"`
	DataDir         string  `yaml:"data_dir"`

	// Workers caps the parallel pool; 0 means every available CPU.
	Workers        int          `yaml:"workers"`
	HistoryBackend string       `yaml:"history_backend"`
	PublishURL     string       `yaml:"publish_url"`
	StatusAddr     string       `yaml:"status_addr"`
	LogLevel       string       `yaml:"log_level"`
	LogFormat      string       `yaml:"log_format"`
	FFmpeg         FFmpegConfig `yaml:"ffmpeg"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	Preset      string `yaml:"preset"`
	CRF         int    `yaml:"crf"`
	Threads     int    `yaml:"threads"`
}

const (
	MinSuggestedSegmentDuration = 1
	MaxSuggestedSegmentDuration = 30
)

func defaults() Config {
	return Config{
		OutputPath:      "final_output.mp4",
		SegmentDuration: 10,
		WorkDir:         "segbench-work",
		DataDir:         "data",
		HistoryBackend:  "sqlite",
		LogLevel:        "info",
		LogFormat:       "text",
		FFmpeg: FFmpegConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Preset:      "veryfast",
			CRF:         23,
			Threads:     1,
		},
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("SEGBENCH_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.InputPath = getEnv("INPUT_PATH", cfg.InputPath)
	cfg.OutputPath = getEnv("OUTPUT_PATH", cfg.OutputPath)
	cfg.WorkDir = getEnv("WORK_DIR", cfg.WorkDir)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.HistoryBackend = getEnv("HISTORY_BACKEND", cfg.HistoryBackend)
	cfg.PublishURL = getEnv("PUBLISH_URL", cfg.PublishURL)
	cfg.StatusAddr = getEnv("STATUS_ADDR", cfg.StatusAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.FFmpeg.FFmpegPath = getEnv("FFMPEG_PATH", cfg.FFmpeg.FFmpegPath)
	cfg.FFmpeg.FFprobePath = getEnv("FFPROBE_PATH", cfg.FFmpeg.FFprobePath)
	cfg.FFmpeg.Preset = getEnv("VIDEO_PRESET", cfg.FFmpeg.Preset)

	var err error
	if cfg.SegmentDuration, err = getFloat("SEGMENT_DURATION", cfg.SegmentDuration); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.FFmpeg.CRF, err = getInt("VIDEO_CRF", cfg.FFmpeg.CRF); err != nil {
		return nil, err
	}
	if cfg.FFmpeg.Threads, err = getInt("VIDEO_THREADS", cfg.FFmpeg.Threads); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SegmentDuration <= 0 {
		return fmt.Errorf("SEGMENT_DURATION must be positive, got %v", c.SegmentDuration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must not be negative, got %d", c.Workers)
	}
	if c.WorkDir == "" {
		return fmt.Errorf("WORK_DIR is required")
	}
	switch c.HistoryBackend {
	case "sqlite", "json", "none":
	default:
		return fmt.Errorf("invalid HISTORY_BACKEND %q (want sqlite, json or none)", c.HistoryBackend)
	}
	return nil
}

// SegmentDurationOutsideSuggested reports durations outside the 1–30s range the
// benchmark is tuned for. They are allowed, but worth a warning.
func (c *Config) SegmentDurationOutsideSuggested() bool {
	return c.SegmentDuration < MinSuggestedSegmentDuration || c.SegmentDuration > MaxSuggestedSegmentDuration
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
