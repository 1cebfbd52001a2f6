package predict

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchema(t *testing.T) {
	assert.NoError(t, CheckSchema([]string{"a", "b"}, []string{"a", "b"}))

	err := CheckSchema([]string{"a", "b", "c"}, []string{"a", "d"})
	var mismatch *FeatureMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"b", "c"}, mismatch.Missing)
	assert.Equal(t, []string{"d"}, mismatch.Unexpected)
	assert.Equal(t, []string{"a", "b", "c"}, mismatch.Expected)
	assert.Equal(t, []string{"a", "d"}, mismatch.Actual)
	assert.Contains(t, err.Error(), "missing: b, c")
	assert.Contains(t, err.Error(), "unexpected: d")
}

func TestHandleLoadsOnce(t *testing.T) {
	var calls int32
	h := NewHandle(func() (Provider, error) {
		atomic.AddInt32(&calls, 1)
		return testModel(), nil
	})

	var wg sync.WaitGroup
	providers := make([]Provider, 16)
	for i := range providers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := h.Get()
			assert.NoError(t, err)
			providers[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, p := range providers {
		assert.Same(t, providers[0], p)
	}
}

func TestHandleKeepsLoadError(t *testing.T) {
	var calls int
	loadErr := errors.New("artifact missing")
	h := NewHandle(func() (Provider, error) {
		calls++
		return nil, loadErr
	})

	_, err := h.Get()
	assert.ErrorIs(t, err, loadErr)
	_, err = h.Get()
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, 1, calls)
}

func TestStaticHandle(t *testing.T) {
	m := testModel()
	p, err := Static(m).Get()
	require.NoError(t, err)
	assert.Same(t, m, p)
}

func TestFileHandle(t *testing.T) {
	_, err := NewFileHandle("does-not-exist.yaml").Get()
	assert.Error(t, err)
}
