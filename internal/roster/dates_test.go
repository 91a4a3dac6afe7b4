package roster

import "testing"

func TestExtractDatesFromStrings(t *testing.T) {
	cases := []struct {
		value         any
		wantPrimary   string
		wantSecondary string
	}{
		{"2024-05-10", "2024-05-10", ""},
		{"2024-05-10 al 2024-05-11", "2024-05-10", "2024-05-11"},
		{"del 10/05/2024 al 11/05/2024", "2024-05-10", "2024-05-11"},
		{"1/5/2024", "2024-05-01", ""},
		{"2024-05-10,2024-05-10", "2024-05-10", ""},
		{"2024-05-10T08:30:00Z", "2024-05-10", ""},
		{"", "", ""},
		{"sin fecha", "", ""},
		{nil, "", ""},
	}

	for _, c := range cases {
		got := ExtractDates(c.value)
		if got.Primary != c.wantPrimary || got.Secondary != c.wantSecondary {
			t.Fatalf("ExtractDates(%v) = %+v, want primary=%q secondary=%q",
				c.value, got, c.wantPrimary, c.wantSecondary)
		}
	}
}

func TestExtractDatesFromTimestamps(t *testing.T) {
	// 2024-05-10T00:00:00Z in seconds and in milliseconds.
	for _, value := range []any{float64(1715299200), float64(1715299200000), "1715299200"} {
		got := ExtractDates(value)
		if got.Primary != "2024-05-10" || got.Secondary != "" {
			t.Fatalf("ExtractDates(%v) = %+v", value, got)
		}
	}
}

func TestExtractDatesFromNestedValues(t *testing.T) {
	value := map[string]any{
		"start_date": "2024-03-01",
		"end_date":   "2024-03-05",
		"comment":    "2099-01-01",
	}
	got := ExtractDates(value)
	if got.Primary != "2024-03-01" || got.Secondary != "2024-03-05" {
		t.Fatalf("map: %+v", got)
	}

	arr := []any{map[string]any{"value": "10/05/2024"}, "2024-05-11"}
	got = ExtractDates(arr)
	if got.Primary != "2024-05-10" || got.Secondary != "2024-05-11" {
		t.Fatalf("array: %+v", got)
	}
}

func TestExtractDatesCyclicValueTerminates(t *testing.T) {
	m := map[string]any{"date": "2024-05-10"}
	m["self"] = m
	arr := []any{"2024-05-11"}
	m["list"] = arr

	got := ExtractDates(m)
	if got.Primary != "2024-05-10" || got.Secondary != "2024-05-11" {
		t.Fatalf("cyclic: %+v", got)
	}
}

func TestNormalizeDateValue(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"2024-05-10", "2024-05-10"},
		{" 10/05/2024 ", "2024-05-10"},
		{"2024-05-10 15:04:05", "2024-05-10"},
		{"nope", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeDateValue(c.value); got != c.want {
			t.Fatalf("NormalizeDateValue(%q) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestAddDaysToISODate(t *testing.T) {
	if got := AddDaysToISODate("2024-05-10", 1); got != "2024-05-11" {
		t.Fatalf("plus one: %q", got)
	}
	if got := AddDaysToISODate("2024-12-31", 1); got != "2025-01-01" {
		t.Fatalf("year roll: %q", got)
	}
	if got := AddDaysToISODate("garbage", 1); got != "" {
		t.Fatalf("garbage: %q", got)
	}
}
