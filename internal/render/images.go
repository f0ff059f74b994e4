package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	// Background uploads are PNG or JPEG.
	_ "image/jpeg"
	_ "image/png"
)

// ResourceState is the lifecycle of an asynchronously loaded image.
type ResourceState int

const (
	ResourcePending ResourceState = iota
	ResourceLoaded
	ResourceFailed
)

// Loader resolves a background-image reference (object key or URL) to a
// decoded image. Implementations typically read from object storage.
type Loader func(ctx context.Context, ref string) (image.Image, error)

type imageEntry struct {
	state ResourceState
	img   image.Image
	done  chan struct{}
}

// Backgrounds caches decoded background images keyed by reference. Loads are
// fire-and-forget: the first Get for a reference kicks off a goroutine and
// reports pending, so a render pass falls back to the placeholder and simply
// picks the image up on a later frame. Failures are logged, not surfaced, and
// not retried.
type Backgrounds struct {
	loader  Loader
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*imageEntry
}

// NewBackgrounds builds the image cache. A nil loader makes every reference
// fail to the placeholder.
func NewBackgrounds(loader Loader, logger *slog.Logger) *Backgrounds {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backgrounds{
		loader:  loader,
		timeout: 15 * time.Second,
		logger:  logger,
		entries: make(map[string]*imageEntry),
	}
}

// Get returns the decoded image (nil unless loaded) and its state, starting
// the load on first request. It never blocks.
func (b *Backgrounds) Get(ref string) (image.Image, ResourceState) {
	if ref == "" {
		return nil, ResourceFailed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.ensureLocked(ref)
	return e.img, e.state
}

// Await blocks until the reference settles (loaded or failed) or the context
// expires. The export path uses this as the explicit readiness signal before
// capturing a page.
func (b *Backgrounds) Await(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	b.mu.Lock()
	e := b.ensureLocked(ref)
	b.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Forget drops a cached reference so the next Get reloads it (used after a
// background is re-uploaded under the same key).
func (b *Backgrounds) Forget(ref string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, ref)
}

func (b *Backgrounds) ensureLocked(ref string) *imageEntry {
	if e, ok := b.entries[ref]; ok {
		return e
	}
	e := &imageEntry{state: ResourcePending, done: make(chan struct{})}
	b.entries[ref] = e
	go b.load(ref, e)
	return e
}

func (b *Backgrounds) load(ref string, e *imageEntry) {
	defer close(e.done)

	settle := func(img image.Image, err error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			e.state = ResourceFailed
			b.logger.Warn("background image load failed",
				slog.String("ref", ref),
				slog.Any("error", err),
			)
			return
		}
		e.img = img
		e.state = ResourceLoaded
	}

	if b.loader == nil {
		settle(nil, fmt.Errorf("no image loader configured"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	img, err := b.loader(ctx, ref)
	if err != nil {
		settle(nil, fmt.Errorf("load %s: %w", ref, err))
		return
	}
	settle(img, nil)
}
