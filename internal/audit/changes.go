// Package audit decides which field edits are worth recording and turns
// them into immutable, human readable history entries.
package audit

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Field names as they appear in ticket documents and patches.
const (
	FieldTitle              = "title"
	FieldDescription        = "description"
	FieldCategory           = "category"
	FieldSubCategoryID      = "subCategoryId"
	FieldPriority           = "priority"
	FieldStatus             = "status"
	FieldAssignedAgentID    = "assignedAgentId"
	FieldAssignedAgentName  = "assignedAgentName"
	FieldAssignedAgents     = "assignedAgents"
	FieldEscalationLevel    = "escalationLevel"
	FieldLocation           = "location"
	FieldAdditionalContacts = "additionalContacts"
	FieldTags               = "tags"
	FieldResolutionNotes    = "resolutionNotes"
	FieldResolutionSteps    = "resolutionSteps"
	FieldAttachments        = "attachments"
	FieldMessages           = "messages"
	FieldWorkLogs           = "workLogs"
	FieldUpdateHistory      = "updateHistory"
	FieldUpdatedAt          = "updatedAt"
)

// excludedFields are derived or separately managed and never diffed.
var excludedFields = map[string]struct{}{
	FieldAssignedAgentName: {},
	FieldWorkLogs:          {},
	FieldUpdateHistory:     {},
	FieldUpdatedAt:         {},
}

// IsExcluded reports whether field is skipped by change detection.
func IsExcluded(field string) bool {
	_, ok := excludedFields[field]
	return ok
}

// IsMeaningfulChange reports whether moving field from oldValue to newValue
// should be recorded. The first matching rule wins:
//
//  1. excluded fields never count
//  2. identical values do not count
//  3. nil and "" are interchangeable
//  4. two empty sequences do not count
//  5. sequences compare as multisets of element keys
//  6. structs and maps compare key by key
//  7. anything else counts
func IsMeaningfulChange(field string, oldValue, newValue any) bool {
	if IsExcluded(field) {
		return false
	}
	if identical(oldValue, newValue) {
		return false
	}
	if isEmpty(oldValue) && isEmpty(newValue) {
		return false
	}

	oldSeq, oldIsSeq := sequence(oldValue)
	newSeq, newIsSeq := sequence(newValue)
	if oldIsSeq && newIsSeq {
		if oldSeq.Len() == 0 && newSeq.Len() == 0 {
			return false
		}
		return !sameKeys(oldSeq, newSeq)
	}

	oldFields, oldIsObj := shallowFields(oldValue)
	newFields, newIsObj := shallowFields(newValue)
	if oldIsObj && newIsObj {
		if len(oldFields) != len(newFields) {
			return true
		}
		for key, ov := range oldFields {
			nv, ok := newFields[key]
			if !ok || !reflect.DeepEqual(ov, nv) {
				return true
			}
		}
		return false
	}

	return true
}

// SameIDSet reports whether two id lists hold the same set of ids,
// ignoring order and duplicates.
func SameIDSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
		other[id] = struct{}{}
	}
	return len(set) == len(other)
}

func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func sequence(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv, true
	}
	return reflect.Value{}, false
}

func sameKeys(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	ak, bk := elementKeys(a), elementKeys(b)
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
	}
	return true
}

// elementKeys normalizes each element to a comparable key and sorts them.
func elementKeys(seq reflect.Value) []string {
	keys := make([]string, 0, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		keys = append(keys, elementKey(seq.Index(i).Interface()))
	}
	sort.Strings(keys)
	return keys
}

func elementKey(v any) string {
	switch e := v.(type) {
	case domain.Contact:
		return e.Key()
	case *domain.Contact:
		if e == nil {
			return ""
		}
		return e.Key()
	case string:
		return e
	}
	return fmt.Sprint(v)
}

func shallowFields(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		fields := make(map[string]any, rv.NumField())
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			if !rt.Field(i).IsExported() {
				continue
			}
			fields[rt.Field(i).Name] = rv.Field(i).Interface()
		}
		return fields, true
	case reflect.Map:
		fields := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fields[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return fields, true
	}
	return nil, false
}
