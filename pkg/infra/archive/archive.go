package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	CodecZstd   = "zstd"
	CodecBrotli = "br"
	CodecNone   = "none"

	extPCM    = ".pcm"
	extZstd   = ".pcm.zst"
	extBrotli = ".pcm.br"
)

//go:generate mockery --name=Archive --dir=. --output=./mocks --filename=archive_mock.go --case=underscore --with-expecter

// Archive keeps committed turn audio on disk, one file per audio buffer.
type Archive interface {
	Store(ctx context.Context, sessionID, bufferID uuid.UUID, pcm []byte) (string, error)
	Load(ctx context.Context, ref string) ([]byte, error)
}

type fileArchive struct {
	dir   string
	codec string
}

func NewFileArchive(dir, codec string) (Archive, error) {
	switch codec {
	case "":
		codec = CodecZstd
	case CodecZstd, CodecBrotli, CodecNone:
	default:
		return nil, fmt.Errorf("unsupported archive codec: %s", codec)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}
	return &fileArchive{dir: dir, codec: codec}, nil
}

func (a *fileArchive) Store(ctx context.Context, sessionID, bufferID uuid.UUID, pcm []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	encoded, ext, err := encode(a.codec, pcm)
	if err != nil {
		return "", err
	}
	sessionDir := filepath.Join(a.dir, sessionID.String())
	if err := os.MkdirAll(sessionDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create session dir: %w", err)
	}
	ref := filepath.Join(sessionID.String(), bufferID.String()+ext)
	if err := os.WriteFile(filepath.Join(a.dir, ref), encoded, 0o600); err != nil {
		return "", fmt.Errorf("failed to write audio archive: %w", err)
	}
	return ref, nil
}

func (a *fileArchive) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(ref)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("invalid archive reference: %s", ref)
	}
	body, err := os.ReadFile(filepath.Join(a.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio archive: %w", err)
	}
	return decode(clean, body)
}

func encode(codec string, pcm []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	switch codec {
	case CodecZstd:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, "", err
		}
		if _, err := enc.Write(pcm); err != nil {
			_ = enc.Close()
			return nil, "", err
		}
		if err := enc.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), extZstd, nil
	case CodecBrotli:
		bw := brotli.NewWriter(&buf)
		if _, err := bw.Write(pcm); err != nil {
			_ = bw.Close()
			return nil, "", err
		}
		if err := bw.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), extBrotli, nil
	default:
		return append([]byte(nil), pcm...), extPCM, nil
	}
}

func decode(ref string, body []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(ref, extZstd):
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case strings.HasSuffix(ref, extBrotli):
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	case strings.HasSuffix(ref, extPCM):
		return body, nil
	default:
		return nil, fmt.Errorf("unknown archive encoding: %s", ref)
	}
}
