package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"certroster/internal"
	"certroster/internal/config"
)

// APIError carries the HTTP status of a failed Pipedrive call so callers
// can distinguish "deal not found" from transport problems.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pipedrive api error: status=%d %s", e.Status, e.Message)
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success      *bool           `json:"success"`
	Data         json.RawMessage `json:"data"`
	Error        string          `json:"error"`
	ErrorInfo    string          `json:"error_info"`
	ErrorMessage string          `json:"error_message"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.PipedriveTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.PipedriveRateLimitPS),
	}
}

func (c *Client) GetDeal(ctx context.Context, dealID string) (internal.Deal, error) {
	body, err := c.fetchJSON(ctx, "deals/"+url.PathEscape(dealID), nil)
	if err != nil {
		return internal.Deal{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return internal.Deal{}, err
	}
	if raw == nil {
		return internal.Deal{}, &APIError{Status: http.StatusNotFound, Message: "deal not found"}
	}

	deal := internal.Deal{Raw: raw}
	if id, ok := toInt(raw["id"]); ok {
		deal.ID = id
	}
	return deal, nil
}

func (c *Client) GetOrganization(ctx context.Context, orgID string) (string, error) {
	body, err := c.fetchJSON(ctx, "organizations/"+url.PathEscape(orgID), nil)
	if err != nil {
		return "", err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", err
	}
	name, _ := raw["name"].(string)
	return strings.TrimSpace(name), nil
}

func (c *Client) GetPerson(ctx context.Context, personID string) (internal.Person, error) {
	body, err := c.fetchJSON(ctx, "persons/"+url.PathEscape(personID), nil)
	if err != nil {
		return internal.Person{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return internal.Person{}, err
	}

	person := internal.Person{ID: personID}
	if name, ok := raw["name"].(string); ok {
		person.Name = strings.TrimSpace(name)
	}
	person.Email = extractPrimaryEmail(raw["email"])
	return person, nil
}

func (c *Client) GetNotes(ctx context.Context, dealID string, start, limit int) ([]internal.Note, error) {
	params := map[string]string{
		"start":      strconv.Itoa(start),
		"limit":      strconv.Itoa(limit),
		"sort_by":    "add_time",
		"sort_order": "desc",
	}
	body, err := c.fetchJSON(ctx, "deals/"+url.PathEscape(dealID)+"/notes", params)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		// A deal without notes answers with data:null.
		return nil, nil
	}

	notes := make([]internal.Note, 0, len(raw))
	for _, item := range raw {
		note := internal.Note{}
		if content, ok := item["content"].(string); ok {
			note.Content = content
		}
		if addTime, ok := item["add_time"].(string); ok {
			note.AddTime = addTime
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (c *Client) GetDealField(ctx context.Context, fieldKey string) ([]internal.FieldOption, error) {
	body, err := c.fetchJSON(ctx, "dealFields/"+url.PathEscape(fieldKey), nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return toFieldOptions(raw["options"]), nil
}

func (c *Client) GetAllDealFields(ctx context.Context) ([]internal.DealField, error) {
	body, err := c.fetchJSON(ctx, "dealFields", map[string]string{"limit": "500"})
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	fields := make([]internal.DealField, 0, len(raw))
	for _, item := range raw {
		field := internal.DealField{Options: toFieldOptions(item["options"])}
		if id, ok := toInt(item["id"]); ok {
			field.ID = id
		}
		if key, ok := item["key"].(string); ok {
			field.Key = strings.TrimSpace(key)
		}
		if field.Key == "" && field.ID == 0 {
			continue
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.PipedriveAPIToken) == "" {
		return nil, errors.New("missing PIPEDRIVE_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.PipedriveAPIURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("api_token", c.cfg.PipedriveAPIToken)
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		var apiResp apiResponse
		_ = json.Unmarshal(body, &apiResp)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = &APIError{Status: resp.StatusCode, Message: extractErrorMessage(apiResp)}
				continue
			}
			return nil, &APIError{Status: resp.StatusCode, Message: extractErrorMessage(apiResp)}
		}

		if apiResp.Success != nil && !*apiResp.Success {
			return nil, &APIError{Status: resp.StatusCode, Message: extractErrorMessage(apiResp)}
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("pipedrive request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func extractErrorMessage(resp apiResponse) string {
	for _, candidate := range []string{resp.Error, resp.ErrorInfo, resp.ErrorMessage} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	var asString string
	if err := json.Unmarshal(resp.Data, &asString); err == nil && strings.TrimSpace(asString) != "" {
		return asString
	}
	return ""
}

// ExtractEntityID pulls the numeric reference out of a deal's org_id or
// person_id field, which the CRM returns either as a scalar or as an
// embedded summary object.
func ExtractEntityID(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]any:
		if id := stringifyIdentifier(v["value"]); id != "" {
			return id
		}
		return stringifyIdentifier(v["id"])
	default:
		return stringifyIdentifier(v)
	}
}

func extractPrimaryEmail(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		var first map[string]any
		for _, item := range v {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if first == nil {
				first = entry
			}
			primary, _ := entry["primary"].(bool)
			label, _ := entry["label"].(string)
			if primary || label == "work" {
				return emailFromEntry(entry)
			}
		}
		if first != nil {
			return emailFromEntry(first)
		}
	}
	return ""
}

func emailFromEntry(entry map[string]any) string {
	if v, ok := entry["value"].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := entry["email"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func toFieldOptions(value any) []internal.FieldOption {
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]internal.FieldOption, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		option := internal.FieldOption{ID: m["id"], Value: m["value"], Key: m["key"]}
		if label, ok := m["label"].(string); ok {
			option.Label = label
		}
		if name, ok := m["name"].(string); ok {
			option.Name = name
		}
		out = append(out, option)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

// stringifyIdentifier renders an id-like value the way the CRM prints it:
// integers without a decimal part, everything else trimmed as text.
func stringifyIdentifier(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
