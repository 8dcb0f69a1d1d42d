package docmodel

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Resolve resolves the reference carried by a main-text entry into the
// element it points to. An entry without a "$ref" marker already is the
// element and is returned unchanged.
//
// The reference value is a slash-delimited path into the document root
// (e.g. "#/tables/3"); the first token names the root and is discarded,
// numeric tokens index sequences and other tokens index mappings. A missing
// key or an out-of-range index is a recoverable condition: it is logged and
// an empty element is returned, never an error. The walk costs O(path
// length) and nothing is cached.
func (d *Document) Resolve(raw map[string]any) map[string]any {
	ref, ok := raw["$ref"].(string)
	if !ok {
		return raw
	}

	parts := strings.Split(ref, "/")
	var item any = d.root
	for _, token := range parts[1:] {
		switch node := item.(type) {
		case map[string]any:
			next, found := node[token]
			if !found {
				log.WithFields(logrus.Fields{
					"ref":   ref,
					"token": token,
				}).Warn("Reference token not found in mapping")
				return map[string]any{}
			}
			item = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 {
				log.WithFields(logrus.Fields{
					"ref":   ref,
					"token": token,
				}).Warn("Reference token is not a valid sequence index")
				return map[string]any{}
			}
			if idx >= len(node) {
				log.WithFields(logrus.Fields{
					"ref":   ref,
					"token": token,
				}).Warn("Reference index out of range")
				return map[string]any{}
			}
			item = node[idx]
		default:
			log.WithFields(logrus.Fields{
				"ref":   ref,
				"token": token,
			}).Warn("Reference path descends into a scalar value")
			return map[string]any{}
		}
	}

	resolved, ok := item.(map[string]any)
	if !ok {
		log.WithField("ref", ref).Warn("Reference does not point to an element object")
		return map[string]any{}
	}
	return resolved
}
