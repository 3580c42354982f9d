package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"auction-engine/internal/auctionerrors"
)

type docKey struct {
	collection string
	id         string
}

type fieldUpdate struct {
	fields []string
	value  any
}

// SplitPath breaks "collection/id/field/..." into its parts. At least one
// field segment is required.
func SplitPath(path string) (collection, id string, fields []string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 {
		return "", "", nil, fmt.Errorf("path %q: %w", path, auctionerrors.ErrInvalidPath)
	}
	for _, p := range parts {
		if p == "" {
			return "", "", nil, fmt.Errorf("path %q has an empty segment: %w", path, auctionerrors.ErrInvalidPath)
		}
	}
	return parts[0], parts[1], parts[2:], nil
}

// groupUpdates parses the paths of a MultiUpdate and groups them by record.
// Paths are ordered so application is deterministic.
func groupUpdates(updates map[string]any) (map[docKey][]fieldUpdate, []docKey, error) {
	paths := make([]string, 0, len(updates))
	for p := range updates {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	grouped := make(map[docKey][]fieldUpdate)
	var order []docKey
	for _, p := range paths {
		collection, id, fields, err := SplitPath(p)
		if err != nil {
			return nil, nil, err
		}
		key := docKey{collection: collection, id: id}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], fieldUpdate{fields: fields, value: updates[p]})
	}
	return grouped, order, nil
}

// applyAll applies every field update to doc in order.
func applyAll(doc json.RawMessage, ups []fieldUpdate) (json.RawMessage, error) {
	var err error
	for _, u := range ups {
		doc, err = Apply(doc, u.fields, u.value)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Apply sets value at fields inside the JSON document doc and returns the
// new document. Missing intermediate objects are created. A numeric segment
// indexes into an array: the current length appends, a smaller index
// replaces. A nil value removes an object key.
func Apply(doc json.RawMessage, fields []string, value any) (json.RawMessage, error) {
	var root any
	if len(doc) > 0 {
		var err error
		if root, err = decodeAny(doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}

	var v any
	if value != nil {
		raw, err := encode(value)
		if err != nil {
			return nil, fmt.Errorf("encode value: %w", err)
		}
		if v, err = decodeAny(raw); err != nil {
			return nil, fmt.Errorf("decode value: %w", err)
		}
	}

	updated, err := setIn(root, fields, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(updated)
}

func setIn(node any, fields []string, v any) (any, error) {
	if len(fields) == 0 {
		return v, nil
	}
	seg, rest := fields[0], fields[1:]

	if node == nil {
		if idx, err := strconv.Atoi(seg); err == nil && idx == 0 {
			node = []any{}
		} else {
			node = map[string]any{}
		}
	}

	switch n := node.(type) {
	case map[string]any:
		if v == nil && len(rest) == 0 {
			delete(n, seg)
			return n, nil
		}
		child, err := setIn(n[seg], rest, v)
		if err != nil {
			return nil, err
		}
		n[seg] = child
		return n, nil
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx > len(n) {
			return nil, fmt.Errorf("array index %q out of range (len %d): %w", seg, len(n), auctionerrors.ErrInvalidPath)
		}
		if idx == len(n) {
			child, err := setIn(nil, rest, v)
			if err != nil {
				return nil, err
			}
			return append(n, child), nil
		}
		child, err := setIn(n[idx], rest, v)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	default:
		return nil, fmt.Errorf("segment %q descends into a scalar: %w", seg, auctionerrors.ErrInvalidPath)
	}
}

func decodeAny(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
