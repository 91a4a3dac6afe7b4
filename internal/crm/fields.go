package crm

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"certroster/internal"
)

// OptionsFetcher is the slice of the CRM client the resolver needs.
type OptionsFetcher interface {
	GetDealField(ctx context.Context, fieldKey string) ([]internal.FieldOption, error)
	GetAllDealFields(ctx context.Context) ([]internal.DealField, error)
}

const allFieldsFlightKey = "\x00all"

// FieldResolver maps numeric-coded custom-field values to their human
// labels. Option lists are fetched once per field per process lifetime;
// concurrent callers for the same uncached field share one in-flight
// request. The cache is set-once-per-key and never invalidated.
type FieldResolver struct {
	fetcher OptionsFetcher

	mu     sync.RWMutex
	cache  map[string][]internal.FieldOption
	flight singleflight.Group
}

func NewFieldResolver(fetcher OptionsFetcher) *FieldResolver {
	return &FieldResolver{fetcher: fetcher, cache: map[string][]internal.FieldOption{}}
}

// Resolve turns a raw custom-field value into its label. It never returns
// an error: lookup failures degrade to the raw value's string form.
func (r *FieldResolver) Resolve(ctx context.Context, fieldKey string, raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case []any:
		for _, item := range v {
			if item != nil {
				return r.Resolve(ctx, fieldKey, item)
			}
		}
		return ""
	case map[string]any:
		if label, ok := v["label"].(string); ok && strings.TrimSpace(label) != "" {
			return label
		}
		if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
			return name
		}
		if nested, ok := v["value"]; ok {
			return r.Resolve(ctx, fieldKey, nested)
		}
		if nested, ok := v["id"]; ok {
			return r.Resolve(ctx, fieldKey, nested)
		}
		return ""
	}

	stringValue := strings.TrimSpace(stringifyIdentifier(raw))
	if stringValue == "" {
		return ""
	}
	if !isNumericString(stringValue) {
		// Already a label.
		return stringValue
	}

	options := r.options(ctx, fieldKey)
	for _, option := range options {
		identifier := option.ID
		if identifier == nil {
			identifier = option.Value
		}
		if identifier == nil {
			identifier = option.Key
		}
		if identifier == nil {
			continue
		}
		if stringifyIdentifier(identifier) != stringValue {
			continue
		}
		if option.Label != "" {
			return option.Label
		}
		if option.Name != "" {
			return option.Name
		}
		if value := stringifyIdentifier(option.Value); value != "" {
			return value
		}
		return stringValue
	}
	return stringValue
}

// Prime loads every deal field's option list in one call, caching by field
// key and numeric id so later Resolve calls skip per-field round trips.
func (r *FieldResolver) Prime(ctx context.Context) error {
	_, err, _ := r.flight.Do(allFieldsFlightKey, func() (any, error) {
		fields, err := r.fetcher.GetAllDealFields(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		for _, field := range fields {
			if field.Key != "" {
				r.storeLocked(field.Key, field.Options)
			}
			if field.ID != 0 {
				r.storeLocked(strconv.Itoa(field.ID), field.Options)
			}
		}
		r.mu.Unlock()
		return nil, nil
	})
	return err
}

func (r *FieldResolver) options(ctx context.Context, fieldKey string) []internal.FieldOption {
	r.mu.RLock()
	cached, ok := r.cache[fieldKey]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	result, _, _ := r.flight.Do(fieldKey, func() (any, error) {
		// Re-check: a bulk Prime may have filled the key while this call
		// waited for the flight slot.
		r.mu.RLock()
		cached, ok := r.cache[fieldKey]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		options, err := r.fetcher.GetDealField(ctx, fieldKey)
		if err != nil {
			log.Printf("field options fetch failed for %s: %v", fieldKey, err)
			options = []internal.FieldOption{}
		}
		r.mu.Lock()
		r.storeLocked(fieldKey, options)
		r.mu.Unlock()
		return options, nil
	})

	options, _ := result.([]internal.FieldOption)
	return options
}

func (r *FieldResolver) storeLocked(key string, options []internal.FieldOption) {
	if _, exists := r.cache[key]; exists {
		return
	}
	if options == nil {
		options = []internal.FieldOption{}
	}
	r.cache[key] = options
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
