package imagegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"wayfarer/internal/logger"
)

// mockProvider is a test double for ImageProvider.
type mockProvider struct {
	generateFunc func(ctx context.Context, prompt string) ([]Part, error)
}

func (m *mockProvider) GenerateImage(ctx context.Context, prompt string) ([]Part, error) {
	return m.generateFunc(ctx, prompt)
}

func pngPart(body string) Part {
	return Part{MIMEType: "image/png", Data: []byte(body)}
}

func TestGenerate_AllSucceedPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	delays := map[string]time.Duration{"a": 40 * time.Millisecond, "b": 10 * time.Millisecond, "c": 0}
	p := &mockProvider{generateFunc: func(_ context.Context, prompt string) ([]Part, error) {
		time.Sleep(delays[prompt])
		return []Part{pngPart("img-" + prompt)}, nil
	}}
	g := NewGenerator(p, 3, logger.NewTest(t))

	files := g.Generate(context.Background(), []string{"a", "b", "c"}, dir, "gion")

	require.Len(t, files, 3)
	for i, f := range files {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, 0, f.PartIndex)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	assert.Equal(t, "gion_0_0.png", filepath.Base(files[0].Path))
	assert.Equal(t, "gion_2_0.png", filepath.Base(files[2].Path))

	data, err := os.ReadFile(files[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "img-b", string(data))
}

func TestGenerate_PartialFailureOmitted(t *testing.T) {
	dir := t.TempDir()
	p := &mockProvider{generateFunc: func(_ context.Context, prompt string) ([]Part, error) {
		switch prompt {
		case "fail":
			return nil, errors.New("quota exceeded")
		case "text-only":
			return []Part{{Text: "I cannot draw that"}}, nil
		}
		return []Part{pngPart(prompt)}, nil
	}}
	g := NewGenerator(p, 4, logger.NewNop())

	files := g.Generate(context.Background(), []string{"first", "fail", "text-only", "last"}, dir, "e")

	require.Len(t, files, 2)
	assert.Equal(t, 0, files[0].Index)
	assert.Equal(t, 3, files[1].Index)
	assert.Equal(t, "e_3_0.png", filepath.Base(files[1].Path))
}

func TestGenerate_FirstBinaryPartUsed(t *testing.T) {
	dir := t.TempDir()
	p := &mockProvider{generateFunc: func(_ context.Context, _ string) ([]Part, error) {
		return []Part{
			{Text: "Here is your image"},
			{MIMEType: "image/jpeg", Data: []byte("jpeg")},
			{MIMEType: "image/png", Data: []byte("png")},
		}, nil
	}}
	g := NewGenerator(p, 1, logger.NewNop())

	files := g.Generate(context.Background(), []string{"only"}, dir, "x")

	require.Len(t, files, 1)
	assert.Equal(t, 1, files[0].PartIndex)
	assert.Equal(t, "x_0_1.jpg", filepath.Base(files[0].Path))
	assert.Equal(t, "image/jpeg", files[0].MIMEType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_AllFailReturnsEmpty(t *testing.T) {
	p := &mockProvider{generateFunc: func(_ context.Context, _ string) ([]Part, error) {
		return nil, errors.New("boom")
	}}
	g := NewGenerator(p, 2, logger.NewNop())

	files := g.Generate(context.Background(), []string{"a", "b"}, t.TempDir(), "x")

	require.NotNil(t, files)
	assert.Empty(t, files)
}

func TestGenerate_EmptyPrompts(t *testing.T) {
	g := NewGenerator(&mockProvider{}, 2, logger.NewNop())
	files := g.Generate(context.Background(), nil, t.TempDir(), "x")
	require.NotNil(t, files)
	assert.Empty(t, files)
}

func TestGenerate_PanicOmitted(t *testing.T) {
	p := &mockProvider{generateFunc: func(_ context.Context, prompt string) ([]Part, error) {
		if prompt == "bad" {
			panic("sdk bug")
		}
		return []Part{pngPart("ok")}, nil
	}}
	g := NewGenerator(p, 2, logger.NewNop())

	files := g.Generate(context.Background(), []string{"bad", "good"}, t.TempDir(), "x")
	require.Len(t, files, 1)
	assert.Equal(t, 1, files[0].Index)
}

func TestGenerate_WriteFailureOmitted(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")
	p := &mockProvider{generateFunc: func(_ context.Context, _ string) ([]Part, error) {
		return []Part{pngPart("ok")}, nil
	}}
	g := NewGenerator(p, 2, logger.NewNop())

	files := g.Generate(context.Background(), []string{"a"}, missing, "x")
	assert.Empty(t, files)
}

// TestGenerate_ConcurrencyBounded checks the shared semaphore caps in-flight calls.
func TestGenerate_ConcurrencyBounded(t *testing.T) {
	var inFlight, peak atomic.Int32
	p := &mockProvider{generateFunc: func(_ context.Context, _ string) ([]Part, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return []Part{pngPart("ok")}, nil
	}}
	g := NewGenerator(p, 2, logger.NewNop())

	files := g.Generate(context.Background(), []string{"1", "2", "3", "4", "5", "6"}, t.TempDir(), "x")

	assert.Len(t, files, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestGenerate_CancelledContextSkipsQueuedTasks(t *testing.T) {
	var calls atomic.Int32
	p := &mockProvider{generateFunc: func(_ context.Context, _ string) ([]Part, error) {
		calls.Add(1)
		return []Part{pngPart("ok")}, nil
	}}
	g := NewGenerator(p, 1, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := g.Generate(ctx, []string{"a", "b"}, t.TempDir(), "x")
	assert.Empty(t, files)
	assert.EqualValues(t, 0, calls.Load())
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/png":                ".png",
		"image/jpeg":               ".jpg",
		"IMAGE/PNG":                ".png",
		"image/webp":               ".webp",
		"application/x-not-a-type": ".bin",
		"":                         ".bin",
	}
	for in, want := range cases {
		assert.Equal(t, want, extensionFor(in), in)
	}
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img_0_0.png")

	require.NoError(t, writeFileAtomic(path, []byte("payload")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "img_0_0.png", entries[0].Name())
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"))
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, len("payload"), info.Size())
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "itineraries", "kyoto")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPartsFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "caption"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("img")}},
			}},
		}},
	}

	parts := partsFromResponse(resp)
	require.Len(t, parts, 2)
	assert.Equal(t, "caption", parts[0].Text)
	assert.Empty(t, parts[0].Data)
	assert.Equal(t, "image/png", parts[1].MIMEType)
	assert.Equal(t, []byte("img"), parts[1].Data)

	assert.Nil(t, partsFromResponse(nil))
	assert.Nil(t, partsFromResponse(&genai.GenerateContentResponse{}))
}
