package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

// lenientAmount decodes any JSON value into a finite decimal, coercing
// garbage to zero. Malformed numeric input is normalized, never
// rejected.
type lenientAmount struct {
	decimal.Decimal
}

func (a *lenientAmount) UnmarshalJSON(b []byte) error {
	a.Decimal = core.ParseAmount(strings.Trim(string(b), `"`))
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes a JSON request body into dst. Form-encoded bodies
// are translated field-by-field so the HTMX forms hit the same handlers
// as API clients.
func decodeBody(r *http.Request, dst any) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return err
		}
		fields := map[string]any{}
		for k := range r.Form {
			fields[k] = r.Form.Get(k)
		}
		body, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, dst)
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

// queryInt reads an integer query parameter, falling back when absent
// or malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// sanitizeInput trims whitespace and strips control characters from
// free-text fields.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
