package health_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/health-aggregator/internal/domain"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/health"
	"github.com/jsamuelsen11/health-aggregator/mocks"
)

func TestRegistry_Empty(t *testing.T) {
	t.Parallel()

	r := health.New()
	checkers := r.Checkers()

	if checkers == nil {
		t.Fatal("expected non-nil slice, got nil")
	}
	if len(checkers) != 0 {
		t.Errorf("expected empty slice, got %d entries", len(checkers))
	}
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	names := []string{"database", "memory", "billing-api"}
	r := health.New()
	for _, n := range names {
		c := mocks.NewMockHealthChecker(t)
		c.EXPECT().Name().Return(n)
		r.Register(c)
	}

	got := r.Checkers()
	if len(got) != len(names) {
		t.Fatalf("len(Checkers()) = %d, want %d", len(got), len(names))
	}
	for i, c := range got {
		if c.Name() != names[i] {
			t.Errorf("Checkers()[%d].Name() = %q, want %q", i, c.Name(), names[i])
		}
	}
	if r.Len() != len(names) {
		t.Errorf("Len() = %d, want %d", r.Len(), len(names))
	}
}

func TestRegistry_NilCheckerIgnored(t *testing.T) {
	t.Parallel()

	r := health.New(nil)
	r.Register(nil)

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistry_CheckersReturnsCopy(t *testing.T) {
	t.Parallel()

	c := mocks.NewMockHealthChecker(t)
	r := health.New(c)

	snapshot := r.Checkers()
	snapshot[0] = nil

	if r.Checkers()[0] == nil {
		t.Error("mutating the snapshot changed the registry")
	}
}

func TestRegistry_ConcurrentSafety(t *testing.T) {
	t.Parallel()

	r := health.New()

	var wg sync.WaitGroup
	const goroutines = 50

	// Half the goroutines register checkers, half take snapshots.
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		if i%2 == 0 {
			go func() {
				defer wg.Done()
				c := mocks.NewMockHealthChecker(t)
				c.EXPECT().Name().Return("checker").Maybe()
				c.EXPECT().Check(mock.Anything).Return(domain.Healthy("checker", "")).Maybe()
				r.Register(c)
			}()
		} else {
			go func() {
				defer wg.Done()
				for _, c := range r.Checkers() {
					_ = c.Check(context.Background())
				}
			}()
		}
	}

	wg.Wait()

	if r.Len() != goroutines/2 {
		t.Errorf("Len() = %d, want %d", r.Len(), goroutines/2)
	}
}
