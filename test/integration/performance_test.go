package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/ggtech/housing-feasibility/internal/feasibility"
	"github.com/ggtech/housing-feasibility/internal/quota"
	"github.com/ggtech/housing-feasibility/pkg/testutil"
	"go.uber.org/zap"
)

// TestComputeThroughput checks that single computations stay cheap enough for
// interactive use; the calculator is pure arithmetic and should clear many
// thousands of calls per second.
func TestComputeThroughput(t *testing.T) {
	engine := feasibility.NewEngine(zap.NewNop())
	inputs := testutil.ReferenceInputs()
	rate := 34.0

	const iterations = 10000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, _, err := engine.Compute(inputs, &rate); err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	t.Logf("%d computations in %v (%.0f/s)", iterations, elapsed, float64(iterations)/elapsed.Seconds())
	if elapsed > 5*time.Second {
		t.Errorf("computation throughput too low: %d iterations took %v", iterations, elapsed)
	}
}

// TestSensitivityLatency bounds the full 3×3 grid, which runs ten
// computations per call.
func TestSensitivityLatency(t *testing.T) {
	engine := feasibility.NewEngine(zap.NewNop())
	inputs := testutil.ReferenceInputs()
	inputs.SalePricePerM2 = floatPtr(1800)

	const iterations = 1000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := engine.Sensitivity(inputs, nil); err != nil {
			t.Fatalf("Sensitivity() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	t.Logf("%d sensitivity grids in %v", iterations, elapsed)
	if elapsed > 10*time.Second {
		t.Errorf("sensitivity throughput too low: %d iterations took %v", iterations, elapsed)
	}
}

// TestConcurrentCompute exercises the engine from many goroutines; it holds
// no mutable state, so parallel callers must not interfere.
func TestConcurrentCompute(t *testing.T) {
	engine := feasibility.NewEngine(zap.NewNop())

	const workers = 16
	const perWorker = 500

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inputs := testutil.ReferenceInputs()
			for i := 0; i < perWorker; i++ {
				out, _, err := engine.Compute(inputs, nil)
				if err != nil {
					errs <- err
					return
				}
				if out.UnitCount != 112 {
					errs <- errUnexpectedUnitCount
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent compute failed: %v", err)
	}
}

// TestLimiterConcurrency hammers the quota limiter from parallel goroutines
// and verifies the admitted count exactly matches the limit.
func TestLimiterConcurrency(t *testing.T) {
	const limit = 100
	limiter := quota.NewLimiter(limit)

	const workers = 20
	const attemptsPerWorker = 25

	var wg sync.WaitGroup
	admitted := make(chan struct{}, workers*attemptsPerWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < attemptsPerWorker; i++ {
				if ok, _ := limiter.Allow("shared-caller"); ok {
					admitted <- struct{}{}
				}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != limit {
		t.Errorf("admitted %d computations, expected exactly %d", count, limit)
	}
}

var errUnexpectedUnitCount = errString("unexpected unit count")

type errString string

func (e errString) Error() string { return string(e) }

func floatPtr(v float64) *float64 {
	return &v
}
