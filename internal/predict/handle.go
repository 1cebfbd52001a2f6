package predict

import (
	"log/slog"
	"sync"
)

// Handle loads a Provider at most once, on first use, and hands the same
// instance to every caller afterwards. The result of the first load,
// error included, is never invalidated.
type Handle struct {
	load func() (Provider, error)

	once     sync.Once
	provider Provider
	err      error
}

// NewHandle returns a handle that calls load on the first Get.
func NewHandle(load func() (Provider, error)) *Handle {
	return &Handle{load: load}
}

// NewFileHandle returns a handle that loads a linear model artifact from path.
func NewFileHandle(path string) *Handle {
	return NewHandle(func() (Provider, error) {
		m, err := LoadLinearModel(path)
		if err != nil {
			return nil, err
		}
		slog.Info("Prediction model loaded",
			slog.String("path", path),
			slog.String("model", m.Name()),
			slog.Int("features", len(m.FeatureNames)))
		return m, nil
	})
}

// Static wraps an already constructed provider.
func Static(p Provider) *Handle {
	h := &Handle{provider: p}
	h.once.Do(func() {})
	return h
}

// Get returns the shared provider, loading it on the first call.
func (h *Handle) Get() (Provider, error) {
	h.once.Do(func() {
		h.provider, h.err = h.load()
	})
	return h.provider, h.err
}
