package middleware

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/valyala/fastjson"
)

const (
	BodyModeRaw    = "raw"
	BodyModeRedact = "redact"
	BodyModeOmit   = "omit"

	redactedValue = "[REDACTED]"
)

var DefaultRedactFields = []string{"password", "confirmPassword", "token", "secret", "creditCard"}

// bodyEcho decides what part of a request body is copied into an event.
type bodyEcho struct {
	mode   string
	fields map[string]struct{}
}

func newBodyEcho(mode string, fields []string) bodyEcho {
	if len(fields) == 0 {
		fields = DefaultRedactFields
	}
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[strings.ToLower(f)] = struct{}{}
	}
	switch mode {
	case BodyModeRedact, BodyModeOmit:
	default:
		mode = BodyModeRaw
	}
	return bodyEcho{mode: mode, fields: set}
}

func (b bodyEcho) sensitive(key string) bool {
	_, ok := b.fields[strings.ToLower(key)]
	return ok
}

// payload renders body for storage. JSON bodies stay JSON, form bodies
// become an object of their values, anything else a JSON string.
func (b bodyEcho) payload(body []byte, form bool) security.Payload {
	if b.mode == BodyModeOmit || len(body) == 0 {
		return nil
	}

	var p fastjson.Parser
	if v, err := p.ParseBytes(body); err == nil {
		if b.mode == BodyModeRedact {
			var a fastjson.Arena
			b.redact(v, &a)
		}
		return v.MarshalTo(nil)
	}

	if form {
		if values, err := url.ParseQuery(string(body)); err == nil {
			if b.mode == BodyModeRedact {
				for key := range values {
					if b.sensitive(key) {
						values[key] = []string{redactedValue}
					}
				}
			}
			if out, err := json.Marshal(values); err == nil {
				return out
			}
		}
	}

	if b.mode == BodyModeRedact {
		out, _ := json.Marshal(redactedValue)
		return out
	}
	out, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return out
}

func (b bodyEcho) redact(v *fastjson.Value, a *fastjson.Arena) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		var hidden []string
		o.Visit(func(key []byte, child *fastjson.Value) {
			if b.sensitive(string(key)) {
				hidden = append(hidden, string(key))
				return
			}
			b.redact(child, a)
		})
		for _, key := range hidden {
			o.Set(key, a.NewString(redactedValue))
		}
	case fastjson.TypeArray:
		items, _ := v.Array()
		for _, item := range items {
			b.redact(item, a)
		}
	}
}
