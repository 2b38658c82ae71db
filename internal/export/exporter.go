package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/store"
)

// Target is a parsed export destination.
type Target struct {
	// Bucket is set for s3:// targets.
	Bucket string
	// Key is the object key for S3 or the file path otherwise. "-" is stdout.
	Key string
}

// IsS3 reports whether the target is an S3 object.
func (t Target) IsS3() bool { return t.Bucket != "" }

func (t Target) String() string {
	if t.IsS3() {
		return "s3://" + t.Bucket + "/" + t.Key
	}
	return t.Key
}

// ParseTarget parses "s3://bucket/key", "s3://bucket/" or a file path.
// An empty S3 key is filled in by Export.
func ParseTarget(raw string) (Target, error) {
	if raw == "" {
		return Target{}, fmt.Errorf("export target is empty")
	}
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return Target{Key: raw}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Target{}, fmt.Errorf("invalid s3 target %q: missing bucket", raw)
	}
	return Target{Bucket: bucket, Key: key}, nil
}

// Result summarises a finished export.
type Result struct {
	Target Target
	Lines  int
	Bytes  int
}

// Exporter reads actions from the store and writes them to a target.
type Exporter struct {
	repo   store.EventRepo
	s3     Putter
	prefix string
	stdout io.Writer
	log    *slog.Logger
	now    func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithS3 sets the client used for s3:// targets and the key prefix used
// when a target names only a bucket.
func WithS3(client Putter, prefix string) Option {
	return func(e *Exporter) {
		e.s3 = client
		e.prefix = prefix
	}
}

// WithStdout redirects "-" targets.
func WithStdout(w io.Writer) Option {
	return func(e *Exporter) { e.stdout = w }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Exporter) { e.log = logging.OrDiscard(log) }
}

// New creates an Exporter over repo.
func New(repo store.EventRepo, opts ...Option) *Exporter {
	e := &Exporter{repo: repo, stdout: os.Stdout, log: logging.Discard(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Export writes the actions selected by opts to target.
func (e *Exporter) Export(ctx context.Context, opts store.QueryOpts, target Target) (Result, error) {
	events, err := e.repo.QueryActions(ctx, opts)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	n, err := WriteJSONL(&buf, events)
	if err != nil {
		return Result{}, err
	}

	if target.IsS3() && (target.Key == "" || strings.HasSuffix(target.Key, "/")) {
		target.Key = e.objectKey(target.Key)
	}
	res := Result{Target: target, Lines: n, Bytes: buf.Len()}

	switch {
	case target.IsS3():
		if e.s3 == nil {
			return Result{}, fmt.Errorf("export to %s: no s3 client configured", target)
		}
		err = putJSONL(ctx, e.s3, target.Bucket, target.Key, buf.Bytes())
	case target.Key == "-":
		_, err = e.stdout.Write(buf.Bytes())
	default:
		err = os.WriteFile(target.Key, buf.Bytes(), 0o644)
	}
	if err != nil {
		return Result{}, fmt.Errorf("export to %s: %w", target, err)
	}

	e.log.Info("exported actions", "target", target.String(), "lines", n, "bytes", res.Bytes)
	return res, nil
}

func (e *Exporter) objectKey(dir string) string {
	name := "actions-" + e.now().UTC().Format("20060102T150405Z") + ".jsonl"
	if dir == "" {
		dir = e.prefix
	}
	return path.Join(dir, name)
}
