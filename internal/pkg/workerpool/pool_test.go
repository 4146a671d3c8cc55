package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_InvalidWorkers(t *testing.T) {
	_, err := New(&Config{Workers: 0}, nil)
	assert.Error(t, err)
}

func TestMap_PreservesOrder(t *testing.T) {
	p, err := New(&Config{Workers: 3}, nil)
	require.NoError(t, err)
	defer p.Release()

	results, errs := Map(context.Background(), p, 20, func(_ context.Context, i int) (int, error) {
		// 倒序完成
		time.Sleep(time.Duration(20-i) * time.Millisecond)
		return i * i, nil
	})

	for i := range results {
		assert.NoError(t, errs[i])
		assert.Equal(t, i*i, results[i])
	}
}

func TestMap_PerTaskErrors(t *testing.T) {
	p, err := New(&Config{Workers: 2}, nil)
	require.NoError(t, err)
	defer p.Release()

	boom := errors.New("boom")
	results, errs := Map(context.Background(), p, 4, func(_ context.Context, i int) (string, error) {
		if i == 2 {
			return "", boom
		}
		return "ok", nil
	})

	assert.Equal(t, []string{"ok", "ok", "", "ok"}, results)
	assert.ErrorIs(t, errs[2], boom)
	assert.NoError(t, errs[3])
}

func TestMap_CancelledContext(t *testing.T) {
	p, err := New(&Config{Workers: 2}, nil)
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, errs := Map(ctx, p, 5, func(_ context.Context, i int) (int, error) {
		calls.Add(1)
		return i, nil
	})

	assert.Equal(t, int32(0), calls.Load())
	for _, e := range errs {
		assert.ErrorIs(t, e, context.Canceled)
	}
}

func TestSubmitWithResult(t *testing.T) {
	p, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	defer p.Release()

	res := <-p.SubmitWithResult(func() (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, res.Error)
	assert.Equal(t, 42, res.Data)
}

func TestSubmit_AfterRelease(t *testing.T) {
	p, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	p.Release()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
	p.Release()
}
