// README: Image fan-out; one provider call per prompt under a shared concurrency limit.
package imagegen

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"

	"wayfarer/internal/logger"
	"wayfarer/internal/metrics"
)

// GeneratedImageFile is a payload written to disk by the generator.
type GeneratedImageFile struct {
	Path      string
	Prefix    string
	Index     int
	PartIndex int
	MIMEType  string
}

// Generator fans prompts out to an ImageProvider. The semaphore is shared by
// every batch, so concurrent callers stay under one provider-wide limit.
type Generator struct {
	provider ImageProvider
	sem      *semaphore.Weighted
	log      logger.Logger
}

// NewGenerator returns a Generator running at most concurrency provider calls at once.
func NewGenerator(provider ImageProvider, concurrency int, log logger.Logger) *Generator {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Generator{
		provider: provider,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		log:      log,
	}
}

// Generate runs one request per prompt and writes the first binary part of each
// response to destDir/{namePrefix}_{i}_{partIndex}{ext}. Failed prompts are
// omitted; the rest keep prompt order. destDir must exist.
func (g *Generator) Generate(ctx context.Context, prompts []string, destDir, namePrefix string) []GeneratedImageFile {
	slots := make([]*GeneratedImageFile, len(prompts))

	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots[i] = g.generateOne(ctx, i, prompt, destDir, namePrefix)
		}()
	}
	wg.Wait()

	files := make([]GeneratedImageFile, 0, len(prompts))
	for _, f := range slots {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files
}

func (g *Generator) generateOne(ctx context.Context, i int, prompt, destDir, prefix string) (file *GeneratedImageFile) {
	fields := logger.Fields{"prefix": prefix, "index": i}
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("image task panic", logger.Fields{"prefix": prefix, "index": i, "panic": fmt.Sprint(r)})
			metrics.ImagesGenerated.WithLabelValues("error").Inc()
			file = nil
		}
	}()

	if ctx.Err() != nil {
		metrics.ImagesGenerated.WithLabelValues("cancelled").Inc()
		return nil
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		metrics.ImagesGenerated.WithLabelValues("cancelled").Inc()
		return nil
	}
	defer g.sem.Release(1)

	parts, err := g.provider.GenerateImage(ctx, prompt)
	if err != nil {
		g.log.WithError(err).Warn("image generation failed", fields)
		metrics.ImagesGenerated.WithLabelValues("error").Inc()
		return nil
	}

	for pi, part := range parts {
		if len(part.Data) == 0 {
			continue
		}
		path := filepath.Join(destDir, fmt.Sprintf("%s_%d_%d%s", prefix, i, pi, extensionFor(part.MIMEType)))
		if err := writeFileAtomic(path, part.Data); err != nil {
			g.log.WithError(err).Warn("image write failed", fields)
			metrics.ImagesGenerated.WithLabelValues("write_error").Inc()
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		metrics.ImagesGenerated.WithLabelValues("ok").Inc()
		return &GeneratedImageFile{Path: path, Prefix: prefix, Index: i, PartIndex: pi, MIMEType: part.MIMEType}
	}

	g.log.Warn("image response had no binary payload", fields)
	metrics.ImagesGenerated.WithLabelValues("empty").Inc()
	return nil
}
