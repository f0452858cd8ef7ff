package internal

import (
	"encoding/json"
	"sort"
	"strconv"
)

// CanonicalMessage is one role/text record in canonical form
type CanonicalMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// canonicalEnvelope is the composite that gets hashed. Count is included
// redundantly so a truncated or extended message list can never collide
// with the original.
type canonicalEnvelope struct {
	Version  int                `json:"version"`
	Count    int                `json:"count"`
	Messages []CanonicalMessage `json:"messages"`
}

const canonicalVersion = 1

// CoerceMessages normalizes any turn-bearing input into one deterministic
// ordered list. Accepted shapes: a list of role/text records, an object
// wrapping such a list under "messages" or "turns", a single record, or a
// mapping from arbitrary keys to records. Anything else yields an empty
// list, never an error.
func CoerceMessages(input interface{}) []CanonicalMessage {
	switch v := input.(type) {
	case nil:
		return []CanonicalMessage{}
	case []CanonicalMessage:
		return normalizeRecords(v)
	case CanonicalMessage:
		return normalizeRecords([]CanonicalMessage{v})
	case []Turn:
		msgs := make([]CanonicalMessage, 0, len(v))
		for _, t := range v {
			msgs = append(msgs, CanonicalMessage{Role: t.Role, Text: t.Text})
		}
		return normalizeRecords(msgs)
	case []interface{}:
		msgs := make([]CanonicalMessage, 0, len(v))
		for _, item := range v {
			msgs = append(msgs, recordFrom(item))
		}
		return normalizeRecords(msgs)
	case map[string]interface{}:
		return coerceObject(v)
	default:
		return []CanonicalMessage{}
	}
}

// coerceObject dispatches the three object-shaped inputs: wrapper,
// single record, and keyed mapping.
func coerceObject(obj map[string]interface{}) []CanonicalMessage {
	for _, field := range []string{"messages", "turns"} {
		raw, present := obj[field]
		if !present {
			continue
		}
		// A wrapper field that is not a list is an unrecognized shape,
		// not a keyed mapping.
		inner, ok := raw.([]interface{})
		if !ok {
			return []CanonicalMessage{}
		}
		msgs := make([]CanonicalMessage, 0, len(inner))
		for _, item := range inner {
			msgs = append(msgs, recordFrom(item))
		}
		return normalizeRecords(msgs)
	}

	if _, hasRole := obj["role"]; hasRole {
		return normalizeRecords([]CanonicalMessage{recordFrom(obj)})
	}
	if _, hasText := obj["text"]; hasText {
		return normalizeRecords([]CanonicalMessage{recordFrom(obj)})
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	msgs := make([]CanonicalMessage, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, recordFrom(obj[k]))
	}
	return normalizeRecords(msgs)
}

// keyLess orders mapping keys: keys that parse fully as a base-10
// integer sort numerically and come before any non-numeric key;
// non-numeric keys sort lexicographically among themselves.
func keyLess(a, b string) bool {
	na, aErr := strconv.Atoi(a)
	nb, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return na < nb
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// recordFrom extracts the role and text fields from one record-shaped
// value. Non-record values contribute an empty record.
func recordFrom(item interface{}) CanonicalMessage {
	switch v := item.(type) {
	case CanonicalMessage:
		return v
	case Turn:
		return CanonicalMessage{Role: v.Role, Text: v.Text}
	case map[string]interface{}:
		msg := CanonicalMessage{}
		if role, ok := v["role"].(string); ok {
			msg.Role = role
		}
		if text, ok := v["text"].(string); ok {
			msg.Text = text
		}
		return msg
	default:
		return CanonicalMessage{}
	}
}

// normalizeRecords trims and whitespace-collapses both fields of every
// record independently.
func normalizeRecords(msgs []CanonicalMessage) []CanonicalMessage {
	out := make([]CanonicalMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, CanonicalMessage{
			Role: NormalizeText(m.Role),
			Text: NormalizeText(m.Text),
		})
	}
	return out
}

// CanonicalForm serializes the coerced input as the versioned envelope
// with stable key order and no whitespace variance. This string is the
// hash input for conversation identity.
func CanonicalForm(input interface{}) string {
	msgs := CoerceMessages(input)
	envelope := canonicalEnvelope{
		Version:  canonicalVersion,
		Count:    len(msgs),
		Messages: msgs,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		// Only unmarshalable types can fail here and CanonicalMessage
		// contains none.
		return ""
	}
	return string(data)
}
