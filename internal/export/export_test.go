package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/store"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seededRepo(t *testing.T) store.EventRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := s.EventRepo()
	ctx := context.Background()
	for i, r := range []analytics.ActionRecord{
		{Kind: analytics.KindSelect, FactorID: "f12", SessionID: "s1", UserID: "u"},
		{Kind: analytics.KindPlaceAttempt, FactorID: "f12", Latency: 2 * time.Second, Correct: true, SessionID: "s1", UserID: "u"},
		{Kind: analytics.KindPlaceAttempt, FactorID: "f11", Latency: 5 * time.Second, SessionID: "s2", UserID: "u"},
	} {
		r.At = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.AppendAction(ctx, r))
	}
	return repo
}

func decodeLines(t *testing.T, data []byte) []Line {
	t.Helper()
	var out []Line
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var l Line
		require.NoError(t, dec.Decode(&l))
		out = append(out, l)
	}
	return out
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw     string
		want    Target
		wantErr bool
	}{
		{raw: "out.jsonl", want: Target{Key: "out.jsonl"}},
		{raw: "-", want: Target{Key: "-"}},
		{raw: "s3://bkt/a/b.jsonl", want: Target{Bucket: "bkt", Key: "a/b.jsonl"}},
		{raw: "s3://bkt", want: Target{Bucket: "bkt"}},
		{raw: "s3:///key", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTarget(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport_File(t *testing.T) {
	repo := seededRepo(t)
	p := filepath.Join(t.TempDir(), "actions.jsonl")

	res, err := New(repo).Export(context.Background(), store.QueryOpts{SessionID: "s1"}, Target{Key: p})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Lines)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	lines := decodeLines(t, data)
	require.Len(t, lines, 2)
	assert.Equal(t, "place-attempt", lines[1].Kind)
	assert.Equal(t, int64(2000), lines[1].LatencyMs)
	assert.True(t, lines[1].Correct)
	assert.Equal(t, base.Add(time.Second), lines[1].At)
}

func TestExport_Stdout(t *testing.T) {
	repo := seededRepo(t)
	var buf bytes.Buffer

	res, err := New(repo, WithStdout(&buf)).Export(context.Background(), store.QueryOpts{}, Target{Key: "-"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, res.Bytes, buf.Len())
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

// fakeS3 is a minimal path-style PutObject endpoint.
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: 501, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
		body = decodeAWSChunked(body)
	}
	key := strings.TrimPrefix(req.URL.Path, "/")
	f.objects[key] = body
	f.types[key] = req.Header.Get("Content-Type")
	return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
}

// decodeAWSChunked returns the payload of a single-chunk aws-chunked body.
func decodeAWSChunked(b []byte) []byte {
	size, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return b
	}
	n, err := strconv.ParseInt(string(size), 16, 64)
	if err != nil || int(n) > len(rest) {
		return b
	}
	return rest[:n]
}

func newFakeS3(t *testing.T) (*s3.Client, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
	})
	return client, fake
}

func TestExport_S3(t *testing.T) {
	repo := seededRepo(t)
	client, fake := newFakeS3(t)

	res, err := New(repo, WithS3(client, "")).Export(context.Background(), store.QueryOpts{}, Target{Bucket: "bkt", Key: "runs/all.jsonl"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Lines)

	body, ok := fake.objects["bkt/runs/all.jsonl"]
	require.True(t, ok, "object stored at bucket/key")
	assert.Len(t, decodeLines(t, body), 3)
	assert.Equal(t, "application/x-ndjson", fake.types["bkt/runs/all.jsonl"])
}

func TestExport_S3GeneratedKey(t *testing.T) {
	repo := seededRepo(t)
	client, fake := newFakeS3(t)

	e := New(repo, WithS3(client, "cascade"))
	e.now = func() time.Time { return base }

	res, err := e.Export(context.Background(), store.QueryOpts{}, Target{Bucket: "bkt"})
	require.NoError(t, err)
	assert.Equal(t, "cascade/actions-20260301T090000Z.jsonl", res.Target.Key)
	_, ok := fake.objects["bkt/cascade/actions-20260301T090000Z.jsonl"]
	assert.True(t, ok)
}

func TestExport_S3WithoutClient(t *testing.T) {
	repo := seededRepo(t)
	_, err := New(repo).Export(context.Background(), store.QueryOpts{}, Target{Bucket: "bkt", Key: "x"})
	require.ErrorContains(t, err, "no s3 client")
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	c, err := NewS3Client(context.Background(), S3Config{Bucket: "bkt", Endpoint: "http://localhost:9000", PathStyle: true})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", c.Options().Region)
	assert.True(t, c.Options().UsePathStyle)
}
