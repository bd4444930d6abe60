// Package validation sniffs source files before they are handed to ffprobe.
package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bnema/segbench/internal/port"
)

// ErrNotMedia is returned when a file's content is not an allowed audio or video container.
var ErrNotMedia = errors.New("not a media file")

var allowedMIMETypes = map[string]bool{
	// Videos
	"video/mp4":        true,
	"video/webm":       true,
	"video/quicktime":  true,
	"video/x-matroska": true,
	"video/avi":        true,
	"video/mp2t":       true,
	// Audio
	"audio/mpeg":      true,
	"audio/ogg":       true,
	"application/ogg": true,
	"audio/wave":      true,
	"audio/flac":      true,
}

const magicBytesBufferSize = 512

// mpegTSPacketSize is the stride between 0x47 sync bytes in a transport stream.
const mpegTSPacketSize = 188

// DetectMediaType reads the head of reader, detects its MIME type and rewinds it.
func DetectMediaType(reader io.ReadSeeker) (mime string, allowed bool, err error) {
	buf := make([]byte, magicBytesBufferSize)
	n, err := io.ReadFull(reader, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}

	if n == 0 {
		return "application/octet-stream", false, nil
	}
	buf = buf[:n]

	mime = detectContainer(buf)
	if mime == "" {
		mime = http.DetectContentType(buf)
	}
	return mime, allowedMIMETypes[mime], nil
}

// detectContainer covers containers http.DetectContentType misses or reports too broadly.
func detectContainer(buf []byte) string {
	if len(buf) < 4 {
		return ""
	}

	// EBML header; the doctype decides between Matroska and WebM
	if buf[0] == 0x1A && buf[1] == 0x45 && buf[2] == 0xDF && buf[3] == 0xA3 {
		if containsASCII(buf, "matroska") {
			return "video/x-matroska"
		}
		return "video/webm"
	}

	if buf[0] == 'f' && buf[1] == 'L' && buf[2] == 'a' && buf[3] == 'C' {
		return "audio/flac"
	}

	// MPEG audio frame sync without an ID3 tag
	if buf[0] == 0xFF {
		switch buf[1] & 0xFE {
		case 0xFA, 0xF2:
			return "audio/mpeg"
		}
	}

	if buf[0] == 'I' && buf[1] == 'D' && buf[2] == '3' {
		return "audio/mpeg"
	}

	if len(buf) >= 12 && buf[4] == 'f' && buf[5] == 't' && buf[6] == 'y' && buf[7] == 'p' {
		if string(buf[8:12]) == "qt  " {
			return "video/quicktime"
		}
		return "video/mp4"
	}

	if len(buf) > mpegTSPacketSize*2 &&
		buf[0] == 0x47 && buf[mpegTSPacketSize] == 0x47 && buf[mpegTSPacketSize*2] == 0x47 {
		return "video/mp2t"
	}

	return ""
}

func containsASCII(buf []byte, s string) bool {
	for i := 0; i+len(s) <= len(buf); i++ {
		if string(buf[i:i+len(s)]) == s {
			return true
		}
	}
	return false
}

// MagicBytesValidator rejects sources whose content is not an allowed media container.
type MagicBytesValidator struct{}

func NewMagicBytesValidator() *MagicBytesValidator {
	return &MagicBytesValidator{}
}

func (v *MagicBytesValidator) ValidateSource(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrNotMedia)
	}

	mime, allowed, err := DetectMediaType(f)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%s (%s): %w", path, mime, ErrNotMedia)
	}
	return nil
}

var _ port.SourceValidator = (*MagicBytesValidator)(nil)
