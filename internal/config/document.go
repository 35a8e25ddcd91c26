package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/tailscale/hujson"
	"github.com/tidwall/pretty"
)

// document is a config file decoded into generic values. It keeps the
// top-level key order so a rewrite does not shuffle the user's file, and
// it keeps fields this version of ProjectConfig does not know about.
type document struct {
	keys   []string
	values map[string]any
}

// standardize strips comments and trailing commas from JSONC input.
func standardize(data []byte) ([]byte, error) {
	std, err := hujson.Standardize(slices.Clone(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONC, err)
	}
	return std, nil
}

// parseDocument parses JSONC bytes into a document. The top level must be
// an object.
func parseDocument(data []byte) (*document, error) {
	std, err := standardize(data)
	if err != nil {
		return nil, err
	}
	return documentFromJSON(std)
}

func documentFromJSON(std []byte) (*document, error) {
	var values map[string]any
	if err := json.Unmarshal(std, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONC, err)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidJSONC)
	}

	keys, err := topLevelKeys(std)
	if err != nil {
		return nil, err
	}
	return &document{keys: keys, values: values}, nil
}

// topLevelKeys lists the object's keys in source order, first occurrence
// only.
func topLevelKeys(std []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(std))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONC, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidJSONC)
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSONC, err)
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSONC, err)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// documentFromConfig converts cfg into a document in struct field order.
// Null values are dropped: a null default has nothing to contribute.
func documentFromConfig(cfg *ProjectConfig) (*document, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	doc, err := documentFromJSON(data)
	if err != nil {
		return nil, err
	}

	keys := doc.keys[:0]
	for _, k := range doc.keys {
		if doc.values[k] == nil {
			delete(doc.values, k)
			continue
		}
		if sub, ok := doc.values[k].(map[string]any); ok {
			maps.DeleteFunc(sub, func(_ string, v any) bool { return v == nil })
		}
		keys = append(keys, k)
	}
	doc.keys = keys
	return doc, nil
}

// decode converts the document into a typed ProjectConfig.
func (d *document) decode() (*ProjectConfig, error) {
	data, err := json.Marshal(d.values)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONC, err)
	}
	return &cfg, nil
}

// set assigns a top-level value, appending the key if it is new.
func (d *document) set(key string, value any) {
	if _, ok := d.values[key]; !ok && !slices.Contains(d.keys, key) {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// encode renders the document as indented JSON in key order.
func (d *document) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range d.keys {
		v, ok := d.values[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := marshalRaw(k)
		if err != nil {
			return nil, err
		}
		vb, err := marshalRaw(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')

	return pretty.PrettyOptions(buf.Bytes(), &pretty.Options{
		Width:    80,
		Indent:   "  ",
		SortKeys: false,
	}), nil
}

// marshalRaw is json.Marshal without HTML escaping.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// mergeDocuments overlays existing on top of defaults. A key present in
// existing (and not null) always keeps its value; defaults only fill gaps.
// The nested sections are merged key by key with the same precedence.
func mergeDocuments(existing, defaults *document) *document {
	merged := &document{
		keys:   slices.Clone(existing.keys),
		values: make(map[string]any, len(existing.values)+len(defaults.values)),
	}
	for _, k := range defaults.keys {
		if !slices.Contains(merged.keys, k) {
			merged.keys = append(merged.keys, k)
		}
	}

	for _, k := range merged.keys {
		ev, inExisting := existing.values[k]
		dv, inDefaults := defaults.values[k]
		switch {
		case !inExisting || ev == nil:
			if inDefaults {
				merged.values[k] = dv
			} else if inExisting {
				merged.values[k] = ev
			}
		case inDefaults && IsNestedSection(k):
			merged.values[k] = mergeSection(ev, dv)
		default:
			merged.values[k] = ev
		}
	}
	return merged
}

// mergeSection merges one nested section. When either side is not an
// object the existing value wins unchanged.
func mergeSection(existing, defaults any) any {
	em, ok := existing.(map[string]any)
	if !ok {
		return existing
	}
	dm, ok := defaults.(map[string]any)
	if !ok {
		return existing
	}

	out := maps.Clone(dm)
	if out == nil {
		out = make(map[string]any, len(em))
	}
	for k, v := range em {
		if v == nil {
			if _, hasDefault := dm[k]; hasDefault {
				continue
			}
		}
		out[k] = v
	}
	return out
}

// equalExcept reports whether a and b hold the same values, ignoring the
// named key and key order.
func equalExcept(a, b *document, ignore string) bool {
	av := maps.Clone(a.values)
	bv := maps.Clone(b.values)
	delete(av, ignore)
	delete(bv, ignore)
	return reflect.DeepEqual(av, bv)
}
