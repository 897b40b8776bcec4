package audit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	unknownUser   = "Unknown User"
	undefinedText = "undefined"
)

// ActionFor classifies a field change into an audit action.
func ActionFor(field string) domain.AuditAction {
	switch field {
	case FieldStatus:
		return domain.ActionStatusChanged
	case FieldAssignedAgentID, FieldAssignedAgents:
		return domain.ActionAssigned
	default:
		return domain.ActionUpdated
	}
}

var quotedFieldLabels = map[string]string{
	FieldPriority:        "Priority",
	FieldEscalationLevel: "Escalation level",
	FieldTitle:           "Title",
	FieldCategory:        "Category",
}

// DescribeChange renders the human readable description of a change.
// Unknown fields fall back to "<field> updated". Sub-category ids are
// looked up across every category; BuildEntry narrows the lookup to the
// ticket's category when EntryInput.Category is set.
func (b *TrailBuilder) DescribeChange(action domain.AuditAction, field string, oldValue, newValue any) string {
	return b.describe("", action, field, oldValue, newValue)
}

func (b *TrailBuilder) describe(category string, action domain.AuditAction, field string, oldValue, newValue any) string {
	switch action {
	case domain.ActionCreated:
		return "Ticket created"
	case domain.ActionCommented:
		if internal, _ := newValue.(bool); internal {
			return "Internal note added"
		}
		return "Comment added"
	}

	switch field {
	case FieldStatus:
		// a missing bound renders as the literal "undefined"
		return fmt.Sprintf("Status changed from %s to %s",
			quote(orUndefined(Stringify(oldValue))), quote(orUndefined(Stringify(newValue))))
	case FieldAssignedAgentID:
		return fmt.Sprintf("Assignment changed from %s to %s",
			quote(b.agentLabel(Stringify(oldValue))), quote(b.agentLabel(Stringify(newValue))))
	case FieldAssignedAgents:
		return fmt.Sprintf("Assigned agents changed from %s to %s",
			quote(b.agentListLabel(oldValue)), quote(b.agentListLabel(newValue)))
	case FieldDescription:
		return "Description updated"
	case FieldSubCategoryID:
		return fmt.Sprintf("Sub-category changed from %s to %s",
			quote(b.subCategoryLabel(category, Stringify(oldValue))), quote(b.subCategoryLabel(category, Stringify(newValue))))
	case FieldAdditionalContacts:
		return fmt.Sprintf("Additional contacts changed from %s to %s",
			quote(contactLabels(oldValue)), quote(contactLabels(newValue)))
	}

	if label, ok := quotedFieldLabels[field]; ok {
		return fmt.Sprintf("%s changed from %s to %s", label, quote(Stringify(oldValue)), quote(Stringify(newValue)))
	}
	if field == "" {
		return string(action)
	}
	return field + " updated"
}

func (b *TrailBuilder) agentLabel(id string) string {
	if id == "" {
		return "unassigned"
	}
	return b.userName(id)
}

func (b *TrailBuilder) agentListLabel(v any) string {
	ids, _ := v.([]string)
	if len(ids) == 0 {
		return "none"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, b.userName(id))
	}
	return strings.Join(names, ", ")
}

func (b *TrailBuilder) userName(id string) string {
	if b.users == nil {
		return unknownUser
	}
	u, ok := b.users.FindUserByID(id)
	if !ok {
		return unknownUser
	}
	if name := u.Name(); name != "" {
		return name
	}
	return unknownUser
}

// subCategoryLabel prefers the sub-category inside category. The old value
// of a change may belong to the previous category, so a miss falls back to
// a search across all of them.
func (b *TrailBuilder) subCategoryLabel(category, id string) string {
	if id == "" || b.categories == nil {
		return ""
	}
	sub, ok := b.categories.FindSubCategory(category, id)
	if !ok && category != "" {
		sub, ok = b.categories.FindSubCategory("", id)
	}
	if !ok {
		return ""
	}
	return sub.Name
}

func contactLabels(v any) string {
	contacts, _ := v.([]domain.Contact)
	labels := make([]string, 0, len(contacts))
	for _, c := range contacts {
		labels = append(labels, c.Label())
	}
	return strings.Join(labels, ", ")
}

// Stringify renders a field value for the old/new columns of an entry.
func Stringify(v any) string {
	if isEmpty(v) {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case *time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case []string:
		return strings.Join(val, ", ")
	case []domain.Contact:
		return contactLabels(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Struct, reflect.Map, reflect.Slice:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
	return fmt.Sprint(v)
}

func orUndefined(s string) string {
	if s == "" {
		return undefinedText
	}
	return s
}

func quote(s string) string {
	return `"` + s + `"`
}
