package invoker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymoz/internal/payments"
)

// step scripts one attempt of fakeGateway.
type step struct {
	resp  payments.PaymentResponse
	err   error
	hang  bool
	panic bool
}

type fakeGateway struct {
	mu       sync.Mutex
	steps    []step
	calls    int32
	builds   int32
	release  chan struct{}
	buildErr error
}

func newFakeGateway(t *testing.T, steps ...step) *fakeGateway {
	f := &fakeGateway{steps: steps, release: make(chan struct{})}
	t.Cleanup(func() { close(f.release) })
	return f
}

func (f *fakeGateway) factory() payments.Factory {
	return func() (payments.Gateway, error) {
		atomic.AddInt32(&f.builds, 1)
		if f.buildErr != nil {
			return nil, f.buildErr
		}
		return f, nil
	}
}

func (f *fakeGateway) SubmitPayment(ctx context.Context, req payments.PaymentRequest) (payments.PaymentResponse, error) {
	n := atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	s := f.steps[len(f.steps)-1]
	if int(n) <= len(f.steps) {
		s = f.steps[n-1]
	}
	f.mu.Unlock()

	switch {
	case s.hang:
		<-f.release
		return payments.PaymentResponse{}, errors.New("released")
	case s.panic:
		panic("boom")
	}
	return s.resp, s.err
}

func (f *fakeGateway) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
}

func (r *sleepRecorder) Sleeps() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

var successResp = payments.PaymentResponse{
	ResponseCode:  payments.CodeSuccess,
	ResponseDesc:  "Request processed successfully",
	TransactionID: "tx-1",
}

func testRequest() payments.PaymentRequest {
	return payments.PaymentRequest{
		Phone:     "258841234567",
		Amount:    decimal.NewFromInt(100),
		Reference: "PAYMOZTEST",
	}
}

func testPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:       attempts,
		PerAttemptTimeout: 50 * time.Millisecond,
		BackoffBase:       500 * time.Millisecond,
	}
}

func TestInvoke_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{resp: successResp})
	rec := &sleepRecorder{}
	inv := New(WithSleep(rec.sleep))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(3), gw.factory())

	require.True(t, out.Succeeded())
	assert.Equal(t, successResp, *out.Payload)
	assert.Nil(t, out.Failure)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, gw.Calls())
	assert.Empty(t, rec.Sleeps())
}

func TestInvoke_GatewayErrorThenSuccess(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{err: &payments.GatewayError{Code: "INS-6", Message: "Transaction failed"}},
		step{resp: successResp},
	)
	rec := &sleepRecorder{}
	inv := New(WithSleep(rec.sleep))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(2), gw.factory())

	require.True(t, out.Succeeded())
	assert.Equal(t, successResp, *out.Payload)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, gw.Calls())
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, rec.Sleeps())
}

func TestInvoke_NoAttemptsAfterSuccess(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{err: errors.New("connection reset")},
		step{err: errors.New("connection reset")},
		step{resp: successResp},
		step{err: errors.New("must not be called")},
	)
	inv := New(WithSleep(func(time.Duration) {}))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(5), gw.factory())

	require.True(t, out.Succeeded())
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, gw.Calls())
}

func TestInvoke_AllTimeouts(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{hang: true})
	rec := &sleepRecorder{}
	inv := New(WithSleep(rec.sleep))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(3), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Nil(t, out.Payload)
	assert.Equal(t, KindExhausted, out.Failure.Kind)
	assert.Equal(t, MessageTimeout, out.Failure.Message)
	assert.Equal(t, CodeExhausted, out.Failure.Code)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, gw.Calls())
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, rec.Sleeps())
}

func TestInvoke_AllTimeoutsRealClock(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{hang: true})
	inv := New()
	policy := Policy{
		MaxAttempts:       3,
		PerAttemptTimeout: 10 * time.Millisecond,
		BackoffBase:       20 * time.Millisecond,
	}

	start := time.Now()
	out := inv.Invoke(context.Background(), testRequest(), policy, gw.factory())
	elapsed := time.Since(start)

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindExhausted, out.Failure.Kind)
	assert.GreaterOrEqual(t, elapsed, policy.TotalBackoff()+3*policy.PerAttemptTimeout)
}

func TestInvoke_GatewayErrorEveryAttempt(t *testing.T) {
	t.Parallel()

	gwErr := &payments.GatewayError{StatusCode: 422, Code: "INS-2006", Message: "Insufficient balance"}
	gw := newFakeGateway(t, step{err: gwErr})
	rec := &sleepRecorder{}
	inv := New(WithSleep(rec.sleep))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(3), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindGatewayError, out.Failure.Kind)
	assert.Equal(t, "Insufficient balance", out.Failure.Message)
	assert.Equal(t, "INS-2006", out.Failure.Code)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, gw.Calls())
	assert.Len(t, rec.Sleeps(), 2)
}

func TestInvoke_LastAttemptPlainErrorUsesFallbackCode(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{err: errors.New("dial tcp: connection refused")})
	inv := New(WithSleep(func(time.Duration) {}))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(2), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindGatewayError, out.Failure.Kind)
	assert.Equal(t, "dial tcp: connection refused", out.Failure.Message)
	assert.Equal(t, CodeGatewayFallback, out.Failure.Code)
}

func TestInvoke_TimeoutThenGatewayErrorOnLastAttempt(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{hang: true},
		step{err: &payments.GatewayError{Code: "INS-5", Message: "Transaction cancelled by customer"}},
	)
	inv := New(WithSleep(func(time.Duration) {}))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(2), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindGatewayError, out.Failure.Kind)
	assert.Equal(t, "INS-5", out.Failure.Code)
	assert.Equal(t, 2, gw.Calls())
}

func TestInvoke_GatewayErrorThenTimeoutOnLastAttempt(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{err: &payments.GatewayError{Code: "INS-1", Message: "Internal error"}},
		step{hang: true},
	)
	inv := New(WithSleep(func(time.Duration) {}))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(2), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindExhausted, out.Failure.Kind)
	assert.Equal(t, MessageTimeout, out.Failure.Message)
	assert.Equal(t, CodeExhausted, out.Failure.Code)
}

func TestInvoke_TerminalErrorWithRetryTransient(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{err: &payments.GatewayError{StatusCode: 422, Code: "INS-2006", Message: "Insufficient balance"}},
		step{resp: successResp},
	)
	rec := &sleepRecorder{}
	inv := New(WithSleep(rec.sleep), WithRetryPredicate(RetryTransient))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(3), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindGatewayError, out.Failure.Kind)
	assert.Equal(t, "INS-2006", out.Failure.Code)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, gw.Calls())
	assert.Empty(t, rec.Sleeps())
}

func TestInvoke_TransientErrorWithRetryTransient(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{err: &payments.GatewayError{StatusCode: 503, Code: "INS-16", Message: "overloaded"}},
		step{resp: successResp},
	)
	inv := New(WithSleep(func(time.Duration) {}), WithRetryPredicate(RetryTransient))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(3), gw.factory())

	require.True(t, out.Succeeded())
	assert.Equal(t, 2, gw.Calls())
}

func TestInvoke_PanicIsConvertedToFailure(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{panic: true})
	inv := New(WithSleep(func(time.Duration) {}))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(2), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, KindGatewayError, out.Failure.Kind)
	assert.Equal(t, "gateway panic: boom", out.Failure.Message)
	assert.Equal(t, CodeGatewayFallback, out.Failure.Code)
	assert.Equal(t, 2, gw.Calls())
}

func TestInvoke_FreshGatewayPerAttempt(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{err: errors.New("fail")})
	inv := New(WithSleep(func(time.Duration) {}))

	_ = inv.Invoke(context.Background(), testRequest(), testPolicy(3), gw.factory())

	assert.Equal(t, int32(3), atomic.LoadInt32(&gw.builds))
}

func TestInvoke_FactoryErrorCountsAsAttempt(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{resp: successResp})
	gw.buildErr = errors.New("bad public key")
	inv := New(WithSleep(func(time.Duration) {}))

	out := inv.Invoke(context.Background(), testRequest(), testPolicy(2), gw.factory())

	require.NotNil(t, out.Failure)
	assert.Equal(t, "build gateway: bad public key", out.Failure.Message)
	assert.Equal(t, 0, gw.Calls())
	assert.Equal(t, int32(2), atomic.LoadInt32(&gw.builds))
}

func TestInvoke_InvalidPolicy(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t, step{resp: successResp})
	inv := New()

	out := inv.Invoke(context.Background(), testRequest(), Policy{MaxAttempts: 0, PerAttemptTimeout: time.Second}, gw.factory())

	require.NotNil(t, out.Failure)
	assert.Contains(t, out.Failure.Message, ErrInvalidPolicy.Error())
	assert.Equal(t, 0, gw.Calls())
}

func TestInvoke_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway(t,
		step{err: errors.New("fail")},
		step{resp: successResp},
	)
	inv := New(WithSleep(func(time.Duration) {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := inv.Invoke(ctx, testRequest(), testPolicy(2), gw.factory())

	assert.True(t, out.Succeeded())
	assert.Equal(t, 2, gw.Calls())
}

func TestInvoke_AtMostMaxAttempts(t *testing.T) {
	t.Parallel()

	scripts := map[string]step{
		"error":   {err: errors.New("fail")},
		"timeout": {hang: true},
		"panic":   {panic: true},
	}

	for name, s := range scripts {
		for attempts := 1; attempts <= 4; attempts++ {
			gw := newFakeGateway(t, s)
			inv := New(WithSleep(func(time.Duration) {}))

			out := inv.Invoke(context.Background(), testRequest(), Policy{
				MaxAttempts:       attempts,
				PerAttemptTimeout: 5 * time.Millisecond,
				BackoffBase:       time.Millisecond,
			}, gw.factory())

			require.NotNil(t, out.Failure, name)
			assert.LessOrEqual(t, gw.Calls(), attempts, name)
			assert.Equal(t, attempts, out.Attempts, name)
		}
	}
}
