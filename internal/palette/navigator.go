package palette

import (
	"io"
	"log/slog"
	"sync"
)

// Listener is told about every colour activation. Silent activations come
// from automatic cycling (beats, reloads) and are usually not worth logging,
// but the colour must still be applied.
type Listener interface {
	OnColorChanged(color RGB, silent bool)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(color RGB, silent bool)

func (f ListenerFunc) OnColorChanged(color RGB, silent bool) { f(color, silent) }

// Handle identifies a registered listener.
type Handle uint64

type registration struct {
	handle   Handle
	listener Listener
}

// Navigator is a cursor over a Histogram in descending-count order, with a
// history stack so Previous can undo Next.
//
// Methods are safe for concurrent use. Listeners run on the caller's
// goroutine after the navigator's lock has been released.
type Navigator struct {
	mu        sync.Mutex
	histogram Histogram
	pos       int
	history   []int
	color     RGB

	listeners  []registration
	nextHandle Handle

	logger *slog.Logger
}

// NewNavigator returns an empty navigator whose colour starts as white.
func NewNavigator(logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Navigator{color: RGB{R: 1, G: 1, B: 1}, logger: logger}
}

// Load replaces the histogram and resets to the dominant bin. An empty
// histogram leaves the current colour alone and notifies nobody.
func (n *Navigator) Load(h Histogram, silent bool) {
	n.mu.Lock()
	n.histogram = h
	n.history = n.history[:0]
	n.pos = 0
	n.mu.Unlock()

	n.Reset(silent)
}

// Reset jumps back to the most common bin and clears history.
func (n *Navigator) Reset(silent bool) {
	n.mu.Lock()
	if len(n.histogram) == 0 {
		n.mu.Unlock()
		return
	}
	n.reset()
	n.activate(silent)
}

// Next moves to the next less common bin, wrapping to the dominant bin
// after the last one.
func (n *Navigator) Next(silent bool) {
	n.mu.Lock()
	if len(n.histogram) == 0 {
		n.mu.Unlock()
		return
	}
	if n.pos+1 >= len(n.histogram) {
		n.reset()
	} else {
		n.pos++
		n.history = append(n.history, n.pos)
	}
	n.activate(silent)
}

// Previous returns to the bin that was active before the last Next. With
// nothing left to undo it behaves like Reset.
func (n *Navigator) Previous() {
	n.mu.Lock()
	if len(n.histogram) == 0 {
		n.mu.Unlock()
		return
	}
	if len(n.history) > 0 {
		n.history = n.history[:len(n.history)-1]
	}
	if len(n.history) == 0 {
		n.reset()
	} else {
		n.pos = n.history[len(n.history)-1]
	}
	n.activate(false)
}

// Refresh re-applies the current bin without moving.
func (n *Navigator) Refresh(silent bool) {
	n.mu.Lock()
	if len(n.histogram) == 0 {
		n.mu.Unlock()
		return
	}
	n.activate(silent)
}

// reset must be called with mu held.
func (n *Navigator) reset() {
	n.pos = 0
	n.history = append(n.history[:0], 0)
}

// activate must be called with mu held; it releases the lock before
// notifying listeners.
func (n *Navigator) activate(silent bool) {
	bin := n.histogram.Rank(n.pos)
	n.color = bin.Color()
	color := n.color
	listeners := make([]Listener, len(n.listeners))
	for i, r := range n.listeners {
		listeners[i] = r.listener
	}
	n.mu.Unlock()

	if !silent {
		n.logger.Debug("setting bin",
			"hue", bin.Hue,
			"saturation", bin.Saturation,
			"value", bin.Value,
			"count", bin.Count,
			"color", color.Hex(),
		)
	}
	for _, l := range listeners {
		l.OnColorChanged(color, silent)
	}
}

// Color returns the active colour, or the fallback set by SetColor.
func (n *Navigator) Color() RGB {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.color
}

// SetColor overrides the active colour without notifying listeners. The
// histogram and position are kept so a later Refresh can restore them.
func (n *Navigator) SetColor(c RGB) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.color = c
}

// Active returns the current bin and its rank.
func (n *Navigator) Active() (Bin, int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.histogram) == 0 || len(n.history) == 0 {
		return Bin{}, 0, false
	}
	return n.histogram.Rank(n.pos), n.pos, true
}

// Histogram returns a copy of the bins being navigated.
func (n *Navigator) Histogram() Histogram {
	n.mu.Lock()
	defer n.mu.Unlock()
	return NewHistogram(n.histogram)
}

// History returns the visited ranks, oldest first.
func (n *Navigator) History() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.history...)
}

// AddListener registers l and returns a handle for RemoveListener. The
// navigator does not own the listener.
func (n *Navigator) AddListener(l Listener) Handle {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextHandle++
	n.listeners = append(n.listeners, registration{handle: n.nextHandle, listener: l})
	return n.nextHandle
}

// RemoveListener unregisters a listener. Unknown handles are ignored.
func (n *Navigator) RemoveListener(h Handle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, r := range n.listeners {
		if r.handle == h {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}
