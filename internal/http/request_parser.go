package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"expensed/internal/core"
)

// maxBodyBytes bounds request bodies; ledger payloads are tiny.
const maxBodyBytes = 1 << 20

var (
	errBadBody = errors.New("request body is not valid JSON")
	errBadPath = errors.New("invalid path parameter")
)

// Request is a decoded JSON request body. Field presence is checked against
// the raw map so a missing-fields error can list every absent key at once.
type Request map[string]any

// DecodeBody reads and parses a JSON object body.
func DecodeBody(r *http.Request) (Request, error) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return nil, errBadBody
	}
	return req, nil
}

// RequireFields verifies every named field is present and non-null. Empty
// or blank strings count as absent. All missing names are reported, not
// just the first.
func (req Request) RequireFields(names ...string) error {
	var missing []string
	for _, name := range names {
		v, ok := req[name]
		if !ok || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &core.MissingFieldsError{Fields: missing}
	}
	return nil
}

// String returns the named field rendered as text. JSON numbers are
// formatted back to their decimal form so amounts may arrive as either
// "4.50" or 4.5.
func (req Request) String(name string) string {
	switch v := req[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Int64 returns the named field as an integer id.
func (req Request) Int64(name string) (int64, bool) {
	switch v := req[name].(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// pathID parses a positive integer path segment such as {userID}.
func pathID(r *http.Request, name string) (int64, error) {
	v := r.PathValue(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadPath
	}
	return id, nil
}
