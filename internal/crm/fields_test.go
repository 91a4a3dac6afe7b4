package crm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"certroster/internal"
)

type fakeFetcher struct {
	mu         sync.Mutex
	fieldCalls int
	allCalls   int
	options    map[string][]internal.FieldOption
	fields     []internal.DealField
	err        error
	delay      time.Duration
}

func (f *fakeFetcher) GetDealField(ctx context.Context, fieldKey string) ([]internal.FieldOption, error) {
	f.mu.Lock()
	f.fieldCalls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.options[fieldKey], nil
}

func (f *fakeFetcher) GetAllDealFields(ctx context.Context) ([]internal.DealField, error) {
	f.mu.Lock()
	f.allCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

func TestResolveLabels(t *testing.T) {
	fetcher := &fakeFetcher{options: map[string][]internal.FieldOption{
		"loc": {
			{ID: float64(27), Label: "Madrid"},
			{ID: float64(28), Label: "Barcelona"},
		},
	}}
	r := NewFieldResolver(fetcher)
	ctx := context.Background()

	cases := []struct {
		raw  any
		want string
	}{
		{nil, ""},
		{"", ""},
		{"27", "Madrid"},
		{float64(28), "Barcelona"},
		{"Aula propia", "Aula propia"},
		{map[string]any{"label": "Directo"}, "Directo"},
		{map[string]any{"value": float64(27)}, "Madrid"},
		{[]any{nil, "28"}, "Barcelona"},
		{"999", "999"},
	}

	for _, c := range cases {
		if got := r.Resolve(ctx, "loc", c.raw); got != c.want {
			t.Fatalf("Resolve(%v) = %q, want %q", c.raw, got, c.want)
		}
	}

	if fetcher.fieldCalls != 1 {
		t.Fatalf("fieldCalls=%d", fetcher.fieldCalls)
	}
}

func TestResolveConcurrentSingleFetch(t *testing.T) {
	fetcher := &fakeFetcher{
		delay: 20 * time.Millisecond,
		options: map[string][]internal.FieldOption{
			"loc": {{ID: float64(1), Label: "Madrid"}},
		},
	}
	r := NewFieldResolver(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Resolve(context.Background(), "loc", "1"); got != "Madrid" {
				t.Errorf("got %q", got)
			}
		}()
	}
	wg.Wait()

	if fetcher.fieldCalls != 1 {
		t.Fatalf("fieldCalls=%d", fetcher.fieldCalls)
	}
}

func TestResolveFetchFailureFallsBackToRaw(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("api down")}
	r := NewFieldResolver(fetcher)

	if got := r.Resolve(context.Background(), "loc", "27"); got != "27" {
		t.Fatalf("got %q", got)
	}
	// The empty result is cached; the fetch is not repeated.
	if got := r.Resolve(context.Background(), "loc", "28"); got != "28" {
		t.Fatalf("got %q", got)
	}
	if fetcher.fieldCalls != 1 {
		t.Fatalf("fieldCalls=%d", fetcher.fieldCalls)
	}
}

func TestPrimeCachesByKeyAndID(t *testing.T) {
	fetcher := &fakeFetcher{fields: []internal.DealField{
		{ID: 12, Key: "loc", Options: []internal.FieldOption{{ID: float64(27), Label: "Madrid"}}},
	}}
	r := NewFieldResolver(fetcher)

	if err := r.Prime(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := r.Resolve(context.Background(), "loc", "27"); got != "Madrid" {
		t.Fatalf("by key: %q", got)
	}
	if got := r.Resolve(context.Background(), "12", "27"); got != "Madrid" {
		t.Fatalf("by id: %q", got)
	}
	if fetcher.fieldCalls != 0 || fetcher.allCalls != 1 {
		t.Fatalf("fieldCalls=%d allCalls=%d", fetcher.fieldCalls, fetcher.allCalls)
	}
}
