// Package fonts provides the process-wide font cache backing the render
// engine. Families are fetched asynchronously and best-effort: while a fetch
// is pending (or after it failed) callers get a built-in fallback face, so a
// render pass never blocks on the network. Loading is idempotent per
// family/variant.
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// State describes a family/variant slot in the cache.
type State int

const (
	StatePending State = iota
	StateLoaded
	StateFailed
)

// Variant is a weight/style combination of a family.
type Variant struct {
	Bold   bool
	Italic bool
}

func (v Variant) String() string {
	switch {
	case v.Bold && v.Italic:
		return "BoldItalic"
	case v.Bold:
		return "Bold"
	case v.Italic:
		return "Italic"
	default:
		return "Regular"
	}
}

// Source fetches raw TTF/OTF bytes for a family variant.
type Source interface {
	Fetch(ctx context.Context, family string, v Variant) ([]byte, error)
}

// Families shipped with every rendering environment; they resolve to the
// built-in faces without touching the Source. Mirrors the editor's system
// font list.
var systemFamilies = map[string]bool{
	"Arial": true, "Helvetica": true, "Times New Roman": true,
	"Courier New": true, "Verdana": true, "Georgia": true,
	"Palatino": true, "Garamond": true, "Comic Sans MS": true,
	"Trebuchet MS": true, "Impact": true,
}

type entry struct {
	state State
	font  *sfnt.Font
	done  chan struct{} // closed when the fetch settles, loaded or failed
}

type faceKey struct {
	family string
	v      Variant
	size   int32 // fontSize px in 1/64 units
}

// Library caches parsed fonts and sized faces. Safe for concurrent use; the
// fetches run on their own goroutines and settle shared state under the
// mutex.
type Library struct {
	source  Source
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	faces   map[faceKey]font.Face
}

// Option configures a Library.
type Option func(*Library)

// WithTimeout overrides the per-fetch timeout (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(l *Library) { l.timeout = d }
}

// NewLibrary builds a font cache on top of the given source. A nil source
// means every non-system family fails immediately and renders with the
// fallback face.
func NewLibrary(source Source, logger *slog.Logger, opts ...Option) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Library{
		source:  source,
		timeout: 5 * time.Second,
		logger:  logger,
		entries: make(map[string]*entry),
		faces:   make(map[faceKey]font.Face),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func entryKey(family string, v Variant) string {
	return family + "|" + v.String()
}

// Load ensures a fetch for the family variant is underway. It returns
// immediately; the result is picked up by a later Face call. Calling Load for
// an already loaded, failed or in-flight slot is a no-op.
func (l *Library) Load(family string, v Variant) {
	if family == "" || systemFamilies[family] {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked(family, v)
}

// ensureLocked starts the fetch goroutine for a missing slot and returns the
// entry. Caller holds l.mu.
func (l *Library) ensureLocked(family string, v Variant) *entry {
	key := entryKey(family, v)
	if e, ok := l.entries[key]; ok {
		return e
	}
	e := &entry{state: StatePending, done: make(chan struct{})}
	l.entries[key] = e
	go l.fetch(family, v, e)
	return e
}

// fetch runs off the caller's goroutine. Failures are logged and the slot
// settles as failed; rendering degrades to the fallback face and the family
// is not retried automatically.
func (l *Library) fetch(family string, v Variant, e *entry) {
	defer close(e.done)

	settle := func(f *sfnt.Font, err error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			e.state = StateFailed
			l.logger.Warn("font load failed",
				slog.String("family", family),
				slog.String("variant", v.String()),
				slog.Any("error", err),
			)
			return
		}
		e.font = f
		e.state = StateLoaded
	}

	if l.source == nil {
		settle(nil, fmt.Errorf("no font source configured"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	raw, err := l.source.Fetch(ctx, family, v)
	if err != nil {
		settle(nil, fmt.Errorf("fetch %s %s: %w", family, v, err))
		return
	}
	parsed, err := opentype.Parse(raw)
	if err != nil {
		settle(nil, fmt.Errorf("parse %s %s: %w", family, v, err))
		return
	}
	settle(parsed, nil)
}

// Status reports the cache state for a family variant. System families are
// always loaded; unknown families report pending without starting a fetch.
func (l *Library) Status(family string, v Variant) State {
	if family == "" || systemFamilies[family] {
		return StateLoaded
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[entryKey(family, v)]; ok {
		return e.state
	}
	return StatePending
}

// Await blocks until the family variant settles (loaded or failed) or the
// context expires. It kicks off the fetch if nobody has yet.
func (l *Library) Await(ctx context.Context, family string, v Variant) error {
	if family == "" || systemFamilies[family] {
		return nil
	}
	l.mu.Lock()
	e := l.ensureLocked(family, v)
	l.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Face returns a sized face for the family variant, falling back to the
// built-in Go fonts while the family is pending or after it failed. sizePx is
// the pixel height configured on the element. The first request for an
// unknown family triggers its background fetch.
func (l *Library) Face(family string, sizePx float64, v Variant) font.Face {
	if sizePx <= 0 {
		sizePx = 12
	}
	key := faceKey{family: family, v: v, size: int32(sizePx * 64)}

	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.faces[key]; ok {
		return f
	}

	// A pending family renders with the fallback but must not populate the
	// face cache, so the real face takes over once the fetch settles.
	cacheable := true
	var parsed *sfnt.Font
	if family != "" && !systemFamilies[family] {
		e := l.ensureLocked(family, v)
		switch e.state {
		case StateLoaded:
			parsed = e.font
		case StatePending:
			cacheable = false
		}
	}
	if parsed == nil {
		parsed = builtin(v)
	}
	if parsed == nil {
		return basicfont.Face7x13
	}

	// DPI 72 makes Size count straight pixels.
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		l.logger.Warn("font face failed",
			slog.String("family", family),
			slog.Any("error", err),
		)
		return basicfont.Face7x13
	}
	if cacheable {
		l.faces[key] = face
	}
	return face
}

var (
	builtinOnce  sync.Once
	builtinFonts map[Variant]*sfnt.Font
)

// builtin returns the embedded Go font for the variant, parsed once per
// process.
func builtin(v Variant) *sfnt.Font {
	builtinOnce.Do(func() {
		builtinFonts = make(map[Variant]*sfnt.Font, 4)
		for variant, ttf := range map[Variant][]byte{
			{}:                         goregular.TTF,
			{Bold: true}:               gobold.TTF,
			{Italic: true}:             goitalic.TTF,
			{Bold: true, Italic: true}: gobolditalic.TTF,
		} {
			f, err := opentype.Parse(ttf)
			if err != nil {
				continue // leaves basicfont as the last resort
			}
			builtinFonts[variant] = f
		}
	})
	return builtinFonts[v]
}
