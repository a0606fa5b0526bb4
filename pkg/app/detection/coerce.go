package detection

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// plainKey matches object keys that cannot carry any signature on their own.
// Such keys are left out of the scanned text so field names like "id" or
// "update" do not read as payloads.
var plainKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Coerce turns an arbitrary request value into the single string the
// detector scans. Strings are used as they are. Structured values are
// flattened to one line per key and scalar, depth first with object keys
// sorted, so JSON punctuation never reaches the signatures.
func Coerce(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return coerceBytes(v), nil
	case []string:
		return strings.Join(v, "\n"), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %T: %w", value, err)
	}
	parsed, err := fastjson.ParseBytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse serialized %T: %w", value, err)
	}
	return flatten(parsed), nil
}

// coerceBytes flattens JSON documents and falls back to the raw text for
// anything else (form bodies, plain text).
func coerceBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var p fastjson.Parser
	parsed, err := p.ParseBytes(b)
	if err != nil {
		return string(b)
	}
	return flatten(parsed)
}

func flatten(v *fastjson.Value) string {
	var parts []string
	walk(v, &parts)
	return strings.Join(parts, "\n")
}

func walk(v *fastjson.Value, parts *[]string) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		keys := make([]string, 0, o.Len())
		o.Visit(func(key []byte, _ *fastjson.Value) {
			keys = append(keys, string(key))
		})
		sort.Strings(keys)
		for _, k := range keys {
			if !plainKey.MatchString(k) {
				*parts = append(*parts, k)
			}
			walk(o.Get(k), parts)
		}
	case fastjson.TypeArray:
		items, _ := v.Array()
		for _, item := range items {
			walk(item, parts)
		}
	case fastjson.TypeString:
		*parts = append(*parts, string(v.GetStringBytes()))
	case fastjson.TypeNumber, fastjson.TypeTrue, fastjson.TypeFalse:
		*parts = append(*parts, v.String())
	}
}
