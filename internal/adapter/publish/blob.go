// Package publish uploads finished runs to a gocloud.dev blob bucket.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port"
	"github.com/klauspost/compress/zstd"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// driver
	_ "gocloud.dev/blob/gcsblob"  // gs:// driver
	_ "gocloud.dev/blob/s3blob"   // s3:// driver
)

const reportName = "report.json.zst"

// BlobPublisher writes <runID>/<artifact> and <runID>/report.json.zst to a bucket.
type BlobPublisher struct {
	bucket  *blob.Bucket
	base    *url.URL
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewBlobPublisher opens bucketURL (file://, s3:// or gs://). Local directories are created.
func NewBlobPublisher(ctx context.Context, bucketURL string) (*BlobPublisher, error) {
	base, err := parseBase(bucketURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "file" {
		if err := os.MkdirAll(base.Path, 0755); err != nil {
			return nil, fmt.Errorf("create publish directory: %w", err)
		}
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		_ = bucket.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = enc.Close()
		_ = bucket.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &BlobPublisher{bucket: bucket, base: base, encoder: enc, decoder: dec}, nil
}

// parseBase parses a bucket URL without its driver options.
func parseBase(bucketURL string) (*url.URL, error) {
	base, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse publish URL: %w", err)
	}
	base.RawQuery = ""
	return base, nil
}

// Publish uploads the merged artifact and the compressed run report. Only reported runs
// can be published.
func (p *BlobPublisher) Publish(ctx context.Context, run *domain.Run) (string, error) {
	if !run.Succeeded() || run.OutputPath == "" {
		return "", fmt.Errorf("run %s has no artifact to publish", run.ID)
	}

	key := path.Join(run.ID, filepath.Base(run.OutputPath))
	if err := p.uploadFile(ctx, key, run.OutputPath); err != nil {
		return "", err
	}

	report, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	compressed := p.encoder.EncodeAll(report, nil)
	opts := &blob.WriterOptions{ContentType: "application/zstd"}
	if err := p.bucket.WriteAll(ctx, path.Join(run.ID, reportName), compressed, opts); err != nil {
		return "", fmt.Errorf("write report for %s: %w", run.ID, err)
	}

	return p.URI(key), nil
}

func (p *BlobPublisher) uploadFile(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	w, err := p.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: "video/mp4"})
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("write data to %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", key, err)
	}
	return nil
}

// Report reads back a published run report.
func (p *BlobPublisher) Report(ctx context.Context, runID string) (*domain.Run, error) {
	compressed, err := p.bucket.ReadAll(ctx, path.Join(runID, reportName))
	if err != nil {
		return nil, fmt.Errorf("read report for %s: %w", runID, err)
	}
	data, err := p.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}

	var run domain.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &run, nil
}

// URI returns the canonical URI for the given key.
func (p *BlobPublisher) URI(key string) string {
	u := *p.base
	u.Path = path.Join("/", u.Path, key)
	return u.String()
}

// Close releases the bucket connection.
func (p *BlobPublisher) Close() error {
	p.decoder.Close()
	return errors.Join(p.encoder.Close(), p.bucket.Close())
}

var _ port.ArtifactPublisher = (*BlobPublisher)(nil)
