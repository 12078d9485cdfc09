// Package rescaler shrinks the current artwork to the circular texture
// diameter on a background goroutine and hands the result to the render
// loop without ever making it wait.
package rescaler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AnyUserName/coverhue/internal/pixel"
	"github.com/AnyUserName/coverhue/internal/resample"
)

// Options configures a single rescale job.
type Options struct {
	// Radius of the displayed circle; the output's larger side is 2*Radius.
	Radius float64
	// KernelSize and Sigma configure the blur applied before each halving.
	KernelSize int
	Sigma      float64
}

// Rescaler owns the unscaled source and the pending/installed textures.
//
// Jobs are never cancelled by newer jobs. Whichever job finishes last
// overwrites the pending slot, even if it started first.
type Rescaler struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	srcMu  sync.Mutex
	source *pixel.Image
	dirty  bool

	mu      sync.Mutex // guards pending only
	pending *pixel.Image

	current atomic.Pointer[pixel.Image]
	wg      sync.WaitGroup
	jobs    atomic.Uint64
}

// New creates a Rescaler. Cancelling ctx (or calling Close) stops running
// jobs between pyramid steps.
func New(ctx context.Context, logger *slog.Logger) *Rescaler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Rescaler{ctx: ctx, cancel: cancel, logger: logger}
}

// SetSource installs a fresh unscaled image and marks it dirty so the next
// Scale call starts a job.
func (r *Rescaler) SetSource(img *pixel.Image) {
	r.srcMu.Lock()
	defer r.srcMu.Unlock()
	r.source = img
	r.dirty = true
}

// Source returns the unscaled image last passed to SetSource.
func (r *Rescaler) Source() *pixel.Image {
	r.srcMu.Lock()
	defer r.srcMu.Unlock()
	return r.source
}

// Dirty reports whether a new source is waiting for a job.
func (r *Rescaler) Dirty() bool {
	r.srcMu.Lock()
	defer r.srcMu.Unlock()
	return r.dirty
}

// Scale launches a job for the current source when it is dirty or force is
// set. It returns false when nothing was started.
func (r *Rescaler) Scale(opts Options, force bool) bool {
	r.srcMu.Lock()
	if (!r.dirty && !force) || r.source.Empty() || opts.Radius <= 0 {
		r.srcMu.Unlock()
		return false
	}
	r.dirty = false
	view := r.source.View()
	r.srcMu.Unlock()

	id := r.jobs.Add(1)
	r.wg.Add(1)
	go r.run(id, view, opts)
	return true
}

func (r *Rescaler) run(id uint64, src *pixel.Image, opts Options) {
	defer r.wg.Done()

	start := time.Now()
	steps := 0
	out, err := pyramid(r.ctx, src, opts.Radius, resample.NewGaussian(opts.KernelSize, opts.Sigma),
		func(*pixel.Image) { steps++ })
	if err != nil {
		r.logger.Debug("rescale aborted", "job", id, "err", err)
		return
	}

	r.mu.Lock()
	r.pending = out
	r.mu.Unlock()

	r.logger.Debug("rescale finished",
		"job", id,
		"from", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"to", fmt.Sprintf("%dx%d", out.Width, out.Height),
		"halvings", steps,
		"took", time.Since(start),
	)
}

// TryInstall swaps a pending result in as the current texture. It never
// blocks: if a job is publishing right now it returns false and the caller
// tries again next tick.
func (r *Rescaler) TryInstall() bool {
	if !r.mu.TryLock() {
		return false
	}
	defer r.mu.Unlock()
	if r.pending == nil {
		return false
	}
	r.current.Store(r.pending)
	r.pending = nil
	return true
}

// Pending reports whether a finished result waits to be installed.
func (r *Rescaler) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

// Current returns the installed texture-ready image, or nil.
func (r *Rescaler) Current() *pixel.Image {
	return r.current.Load()
}

// Wait blocks until every launched job has finished.
func (r *Rescaler) Wait() {
	r.wg.Wait()
}

// Close stops running jobs and waits for them.
func (r *Rescaler) Close() {
	r.cancel()
	r.wg.Wait()
}

// Halvings returns how many blur-and-halve steps a source whose larger side
// is limiting goes through before the final pass.
func Halvings(limiting int, radius float64) int {
	n := 0
	for float64(limiting)/2 > radius*2 {
		limiting = int(math.Ceil(float64(limiting) / 2))
		n++
	}
	return n
}

// Pyramid runs the blur-then-halve pyramid followed by one bicubic pass to
// a larger side of exactly 2*radius. Images with alpha are returned as is.
func Pyramid(ctx context.Context, src *pixel.Image, radius float64, blur *resample.Gaussian) (*pixel.Image, error) {
	return pyramid(ctx, src, radius, blur, nil)
}

// pyramid is Pyramid with a callback receiving each halved image.
func pyramid(ctx context.Context, src *pixel.Image, radius float64, blur *resample.Gaussian, step func(*pixel.Image)) (*pixel.Image, error) {
	if src.Empty() {
		return nil, resample.ErrEmptyImage
	}
	if src.HasAlpha() {
		return src, nil
	}

	// Steps are counted on the larger side, not the width, so portrait
	// art is halved as often as landscape art of the same size.
	cur := src
	for i, n := 0, Halvings(src.Limiting(), radius); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blurred, err := blur.Blur(cur)
		if err != nil {
			return nil, fmt.Errorf("blur %dx%d: %w", cur.Width, cur.Height, err)
		}
		cur, err = resample.Resize(blurred, 0.5)
		if err != nil {
			return nil, fmt.Errorf("halve %dx%d: %w", blurred.Width, blurred.Height, err)
		}
		if step != nil {
			step(cur)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := Target(cur.Width, cur.Height, radius)
	out, err := resample.ResizeTo(cur, w, h)
	if err != nil {
		return nil, fmt.Errorf("final resize to %dx%d: %w", w, h, err)
	}
	return out, nil
}

// Target returns the output size for a width x height image: the larger
// side becomes 2*radius and the other keeps the aspect ratio.
func Target(width, height int, radius float64) (int, int) {
	d := int(math.Round(radius * 2))
	if width >= height {
		return d, max(1, int(math.Round(float64(height)*float64(d)/float64(width))))
	}
	return max(1, int(math.Round(float64(width)*float64(d)/float64(height)))), d
}
