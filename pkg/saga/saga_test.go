package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func recordStep(trace *[]string, name string) (func(context.Context) error, func(context.Context) error) {
	return func(context.Context) error {
			*trace = append(*trace, name)
			return nil
		}, func(context.Context) error {
			*trace = append(*trace, "undo "+name)
			return nil
		}
}

func TestSaga_Execute_Success(t *testing.T) {
	var trace []string
	s := New("test_success", 5*time.Second, nil)

	a, ca := recordStep(&trace, "attach")
	p, cp := recordStep(&trace, "persist")
	s.AddStep("attach", a, ca).AddStep("persist", p, cp)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"attach", "persist"}, trace)
}

func TestSaga_Execute_FailureCompensatesInReverse(t *testing.T) {
	var trace []string
	s := New("test_failure", 5*time.Second, nil)

	a, ca := recordStep(&trace, "attach")
	b, cb := recordStep(&trace, "reserve")
	stepErr := errors.New("insert failed")

	s.AddStep("attach", a, ca)
	s.AddStep("reserve", b, cb)
	s.AddStep("persist", func(context.Context) error {
		trace = append(trace, "persist")
		return stepErr
	}, func(context.Context) error {
		trace = append(trace, "undo persist")
		return nil
	})

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, stepErr)
	// 失败的步骤本身不补偿
	assert.Equal(t, []string{"attach", "reserve", "persist", "undo reserve", "undo attach"}, trace)
}

func TestSaga_Execute_NilCompensateSkipped(t *testing.T) {
	var trace []string
	s := New("test_nil_compensate", 0, nil)

	a, ca := recordStep(&trace, "attach")
	s.AddStep("attach", a, ca)
	s.AddStep("audit", func(context.Context) error { return nil }, nil)
	s.AddStep("persist", func(context.Context) error { return errors.New("boom") }, nil)

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"attach", "undo attach"}, trace)
}

func TestSaga_Execute_TimeoutCompensates(t *testing.T) {
	var trace []string
	var compensateCtxErr error
	s := New("test_timeout", 20*time.Millisecond, nil)

	s.AddStep("slow", func(ctx context.Context) error {
		trace = append(trace, "slow")
		<-ctx.Done()
		return nil
	}, func(ctx context.Context) error {
		compensateCtxErr = ctx.Err()
		trace = append(trace, "undo slow")
		return nil
	})
	s.AddStep("never", func(context.Context) error {
		trace = append(trace, "never")
		return nil
	}, nil)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"slow", "undo slow"}, trace)
	assert.NoError(t, compensateCtxErr, "补偿不应继承已过期的ctx")
}

func TestSaga_Execute_CompensationFailureLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	var trace []string
	s := New("test_compensation_failure", 0, zap.New(core))

	s.AddStep("first", func(context.Context) error { return nil }, func(context.Context) error {
		trace = append(trace, "undo first")
		return nil
	})
	s.AddStep("second", func(context.Context) error { return nil }, func(context.Context) error {
		return errors.New("disk gone")
	})
	s.AddStep("third", func(context.Context) error { return errors.New("boom") }, nil)

	require.Error(t, s.Execute(context.Background()))
	// second补偿失败不影响first的补偿
	assert.Equal(t, []string{"undo first"}, trace)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "saga compensation failed", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "disk gone")
}
