package localization

import (
	"strconv"
	"strings"
)

// Document is one translation document: a tree of strings, arrays and
// nested objects as unmarshalled from a (locale, namespace) asset.
type Document map[string]any

// DocumentSet holds the documents of one locale, keyed by namespace.
type DocumentSet map[string]Document

// ResolveKey walks a dotted key path through the document. Each segment may
// carry a trailing [N] index addressing an array element. The boolean is
// false when any segment is absent, descends into a non-object, indexes out
// of range, or the leaf is not a string.
func ResolveKey(key string, doc Document) (string, bool) {
	if key == "" || doc == nil {
		return "", false
	}

	var current any = map[string]any(doc)
	for _, segment := range strings.Split(key, ".") {
		name, index, hasIndex := splitIndex(segment)
		if name == "" {
			return "", false
		}

		obj, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = obj[name]
		if !ok {
			return "", false
		}

		if hasIndex {
			arr, arrOK := current.([]any)
			if !arrOK || index < 0 || index >= len(arr) {
				return "", false
			}
			current = arr[index]
		}
	}

	leaf, ok := current.(string)
	return leaf, ok
}

// Resolve is ResolveKey bound to the document.
func (d Document) Resolve(key string) (string, bool) {
	return ResolveKey(key, d)
}

// Resolve looks a key up across the set. The first key segment selects the
// namespace when it names one; otherwise the whole key is resolved against
// the common namespace.
func (s DocumentSet) Resolve(key string) (string, bool) {
	if s == nil {
		return "", false
	}

	if idx := strings.IndexByte(key, '.'); idx > 0 {
		if doc, ok := s[key[:idx]]; ok {
			if value, found := ResolveKey(key[idx+1:], doc); found {
				return value, true
			}
			return "", false
		}
	}
	return ResolveKey(key, s[NamespaceCommon])
}

// NamespaceCommon holds shared chrome strings used by every page.
const NamespaceCommon = "common"

// splitIndex splits a path segment of the form "name[3]" into its name and
// index parts.
func splitIndex(segment string) (string, int, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 || !strings.HasSuffix(segment, "]") {
		return segment, 0, false
	}

	name := segment[:open]
	idxStr := segment[open+1 : len(segment)-1]
	index, err := strconv.Atoi(idxStr)
	if err != nil {
		// A malformed index makes the whole segment unresolvable.
		return "", 0, false
	}
	return name, index, true
}
