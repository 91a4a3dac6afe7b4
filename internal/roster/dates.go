package roster

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const isoDay = "2006-01-02"

// DatePair holds up to two distinct calendar dates in discovery order.
// Primary is the first date found, not necessarily the earliest; typical
// CRM data lists the start date first.
type DatePair struct {
	Primary   string
	Secondary string
}

var (
	reISODate  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	reEuroDate = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	reISOExact = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Key preference when descending into nested objects: start-ish keys first,
// then end-ish keys, then whatever is left.
var (
	dateStartKeys = []string{"start_date", "startDate", "start", "from", "initial", "first", "primary", "value", "date"}
	dateEndKeys   = []string{"end_date", "endDate", "end", "to", "final", "second", "finish"}
)

var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-01-2006",
}

// ExtractDates walks an arbitrarily shaped CRM field value (string, number,
// instant, array, nested object) and collects up to two distinct calendar
// dates. Cyclic values terminate; whatever was found before the cycle is
// returned.
func ExtractDates(value any) DatePair {
	c := &dateCollector{visited: map[uintptr]struct{}{}}
	c.collect(value)
	return DatePair{Primary: c.primary, Secondary: c.secondary}
}

type dateCollector struct {
	primary   string
	secondary string
	visited   map[uintptr]struct{}
}

func (c *dateCollector) done() bool {
	return c.primary != "" && c.secondary != ""
}

func (c *dateCollector) collect(value any) {
	if c.done() || value == nil {
		return
	}

	switch v := value.(type) {
	case string:
		c.collectString(v)
	case float64:
		c.addTimestamp(v)
	case int:
		c.addTimestamp(float64(v))
	case int64:
		c.addTimestamp(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			c.addTimestamp(f)
		}
	case time.Time:
		if !v.IsZero() {
			c.add(v.UTC().Format(isoDay))
		}
	case []any:
		if !c.markVisited(v) {
			return
		}
		for _, item := range v {
			if c.done() {
				return
			}
			c.collect(item)
		}
	case map[string]any:
		c.collectMap(v)
	}
}

func (c *dateCollector) collectString(s string) {
	if matches := reISODate.FindAllString(s, -1); len(matches) > 0 {
		for _, m := range matches {
			c.add(m)
		}
		return
	}

	if matches := reEuroDate.FindAllStringSubmatch(s, -1); len(matches) > 0 {
		for _, m := range matches {
			c.add(europeanToISO(m))
		}
		return
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return
	}
	if ts, err := strconv.ParseFloat(trimmed, 64); err == nil {
		c.addTimestamp(ts)
		return
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			c.add(t.UTC().Format(isoDay))
			return
		}
	}
}

func (c *dateCollector) collectMap(m map[string]any) {
	if !c.markVisited(m) {
		return
	}

	seen := map[string]struct{}{}
	for _, key := range dateStartKeys {
		if c.done() {
			return
		}
		if v, ok := m[key]; ok {
			seen[key] = struct{}{}
			c.collect(v)
		}
	}
	for _, key := range dateEndKeys {
		if c.done() {
			return
		}
		if v, ok := m[key]; ok {
			seen[key] = struct{}{}
			c.collect(v)
		}
	}

	// Remaining properties in stable order.
	rest := make([]string, 0, len(m))
	for key := range m {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if c.done() {
			return
		}
		c.collect(m[key])
	}
}

// markVisited guards against self-referential maps and slices. Returns
// false when the container was already walked.
func (c *dateCollector) markVisited(container any) bool {
	ptr := reflect.ValueOf(container).Pointer()
	if _, ok := c.visited[ptr]; ok {
		return false
	}
	c.visited[ptr] = struct{}{}
	return true
}

// addTimestamp treats the number as Unix seconds below 1e12 magnitude,
// milliseconds otherwise.
func (c *dateCollector) addTimestamp(ts float64) {
	if ts == 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return
	}
	millis := int64(ts)
	if math.Abs(ts) < 1e12 {
		millis = int64(ts * 1000)
	}
	c.add(time.UnixMilli(millis).UTC().Format(isoDay))
}

// add fills primary then secondary, skipping duplicates. First distinct
// date wins the primary slot.
func (c *dateCollector) add(date string) {
	if date == "" || date == c.primary || date == c.secondary {
		return
	}
	if c.primary == "" {
		c.primary = date
		return
	}
	if c.secondary == "" {
		c.secondary = date
	}
}

// europeanToISO converts dd/mm/yyyy to yyyy-mm-dd purely textually; no
// calendar validation, 31/02/2024 passes through uncorrected.
func europeanToISO(match []string) string {
	day, month, year := match[1], match[2], match[3]
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return year + "-" + month + "-" + day
}

// NormalizeDateValue reduces a single date-ish string to ISO yyyy-mm-dd,
// or "" when it cannot be read.
func NormalizeDateValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if reISOExact.MatchString(value) {
		return value
	}
	pair := ExtractDates(value)
	return pair.Primary
}

// AddDaysToISODate shifts an ISO date by whole days in UTC. Returns "" for
// unparseable input.
func AddDaysToISODate(isoDate string, days int) string {
	t, err := time.Parse(isoDay, isoDate)
	if err != nil {
		return ""
	}
	return t.UTC().AddDate(0, 0, days).Format(isoDay)
}
