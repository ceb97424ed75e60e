package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/inquiry-intake/constants"
	"github.com/joseph-ayodele/inquiry-intake/internal/common"
)

// reObject is greedy: first '{' through last '}'.
var reObject = regexp.MustCompile(`(?s)\{.*\}`)

// LocateJSONObject returns the first greedy {...} span in a completion.
func LocateJSONObject(text string) (string, error) {
	span := reObject.FindString(text)
	if span == "" {
		return "", common.ErrNoJSONFound
	}
	return span, nil
}

// DecodeObject decodes a located span, keeping numbers as written.
func DecodeObject(span string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedJSON, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: null object", common.ErrMalformedJSON)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", common.ErrMalformedJSON)
	}
	return m, nil
}

// Reconciliation notes what lenient reconciliation had to change.
type Reconciliation struct {
	Values  map[string]string
	Dropped []string // keys not in the schema
	Missing []string // schema fields absent from the object
	Renamed []string // keys matched case/space-insensitively
	Coerced []string // non-string values turned into strings
}

// Changed reports whether the decoded object did not already match the schema.
func (r Reconciliation) Changed() bool {
	return len(r.Dropped)+len(r.Missing)+len(r.Renamed)+len(r.Coerced) > 0
}

// Reconcile maps a decoded object onto fields. Exact key matches win over loose ones;
// missing fields and sentinel synonyms become constants.Unknown.
func Reconcile(m map[string]any, fields []string) Reconciliation {
	rec := Reconciliation{Values: make(map[string]string, len(fields))}

	loose := make(map[string]string, len(fields))
	for _, f := range fields {
		loose[normalizeKey(f)] = f
	}

	// sorted for deterministic loose matching
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	exact := make(map[string]bool, len(fields))
	for _, k := range keys {
		if loose[normalizeKey(k)] == k {
			exact[k] = true
		}
	}

	for _, k := range keys {
		field, ok := loose[normalizeKey(k)]
		if !ok {
			rec.Dropped = append(rec.Dropped, k)
			continue
		}
		if field != k {
			if exact[field] {
				rec.Dropped = append(rec.Dropped, k)
				continue
			}
			if _, seen := rec.Values[field]; seen {
				rec.Dropped = append(rec.Dropped, k)
				continue
			}
			rec.Renamed = append(rec.Renamed, k)
		}
		v, coerced := coerceValue(m[k])
		if coerced {
			rec.Coerced = append(rec.Coerced, field)
		}
		rec.Values[field] = v
	}

	for _, f := range fields {
		if _, ok := rec.Values[f]; !ok {
			rec.Missing = append(rec.Missing, f)
			rec.Values[f] = constants.Unknown
		}
	}
	return rec
}

// IsSentinelSynonym reports whether s means "nothing determined".
func IsSentinelSynonym(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "n/a", "none", constants.Unknown:
		return true
	}
	return false
}

func coerceValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return constants.Unknown, false
	case string:
		if IsSentinelSynonym(t) {
			return constants.Unknown, false
		}
		return strings.TrimSpace(t), false
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		var parts []string
		for _, e := range t {
			s, _ := coerceValue(e)
			if s != constants.Unknown {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return constants.Unknown, true
		}
		return strings.Join(parts, ", "), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return constants.Unknown, true
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return string(b), true
		}
		return buf.String(), true
	}
}

func normalizeKey(k string) string {
	k = strings.NewReplacer("’", "'", "‘", "'").Replace(k)
	return strings.ToLower(strings.Join(strings.Fields(k), " "))
}
