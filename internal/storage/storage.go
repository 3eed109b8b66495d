// Package storage reads uploaded audio objects from Cloud Storage, S3 or the
// local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	SchemeGCS  = "gs"
	SchemeS3   = "s3"
	SchemeFile = "file"
)

// MaxObjectBytes caps how much of an object is read into memory.
const MaxObjectBytes = 25 << 20

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidRef = errors.New("storage: invalid object reference")
	ErrTooLarge   = errors.New("storage: object too large")
)

// Store reads whole objects by reference.
type Store interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}

// Backend reads one object from a bucket. Backends without buckets ignore it.
type Backend interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Ref is a parsed object reference.
type Ref struct {
	Scheme string
	Bucket string
	Key    string
}

func (r Ref) String() string {
	if r.Bucket == "" {
		return r.Scheme + "://" + r.Key
	}
	return r.Scheme + "://" + r.Bucket + "/" + r.Key
}

// ParseRef splits gs://bucket/key, s3://bucket/key and file://path. Plain
// paths get the default scheme and bucket.
func ParseRef(ref, defaultScheme, defaultBucket string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Ref{}, fmt.Errorf("%w: empty", ErrInvalidRef)
	}

	scheme, rest, ok := strings.Cut(ref, "://")
	if !ok {
		key := strings.TrimLeft(ref, "/")
		if key == "" {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
		}
		return Ref{Scheme: defaultScheme, Bucket: defaultBucket, Key: key}, nil
	}

	scheme = strings.ToLower(scheme)
	if scheme == SchemeFile {
		if strings.Trim(rest, "/") == "" {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
		}
		return Ref{Scheme: scheme, Key: rest}, nil
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return Ref{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// Mux dispatches references to the backend registered for their scheme.
type Mux struct {
	backends      map[string]Backend
	defaultScheme string
	defaultBucket string
}

// NewMux creates a mux. Plain paths resolve to defaultScheme/defaultBucket.
func NewMux(defaultScheme, defaultBucket string) *Mux {
	return &Mux{
		backends:      make(map[string]Backend),
		defaultScheme: defaultScheme,
		defaultBucket: defaultBucket,
	}
}

// Register binds a backend to a scheme.
func (m *Mux) Register(scheme string, b Backend) {
	m.backends[strings.ToLower(scheme)] = b
}

func (m *Mux) Read(ctx context.Context, ref string) ([]byte, error) {
	r, err := ParseRef(ref, m.defaultScheme, m.defaultBucket)
	if err != nil {
		return nil, err
	}
	b, ok := m.backends[r.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no backend for scheme %q", ErrInvalidRef, r.Scheme)
	}
	data, err := b.ReadObject(ctx, r.Bucket, r.Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r, err)
	}
	return data, nil
}

// readAll reads at most MaxObjectBytes from rc.
func readAll(rc io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rc, MaxObjectBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxObjectBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
