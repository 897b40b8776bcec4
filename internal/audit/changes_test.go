package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestIsMeaningfulChange(t *testing.T) {
	cases := []struct {
		name  string
		field string
		old   any
		new   any
		want  bool
	}{
		{"excluded display name", FieldAssignedAgentName, "Alex", "Kim", false},
		{"excluded work logs", FieldWorkLogs, nil, []domain.WorkLogEntry{{ID: "w1"}}, false},
		{"identical string", FieldTitle, "Printer", "Printer", false},
		{"identical status", FieldStatus, domain.TicketStatusNew, domain.TicketStatusNew, false},
		{"nil to empty string", FieldSubCategoryID, nil, "", false},
		{"empty string to nil", FieldSubCategoryID, "", nil, false},
		{"empty to value", FieldSubCategoryID, "", "hw-printer", true},
		{"value to empty", FieldAssignedAgentID, "agent-7", "", true},
		{"status change", FieldStatus, domain.TicketStatusNew, domain.TicketStatusInProgress, true},
		{"nil and empty slices", FieldTags, []string(nil), []string{}, false},
		{"reordered strings", FieldAssignedAgents, []string{"a", "b"}, []string{"b", "a"}, false},
		{"different strings", FieldAssignedAgents, []string{"a", "b"}, []string{"a", "c"}, true},
		{"different length", FieldTags, []string{"a"}, []string{"a", "a"}, true},
		{"empty to populated slice", FieldTags, []string{}, []string{"vip"}, true},
		{
			"reordered contacts by email",
			FieldAdditionalContacts,
			[]domain.Contact{{Name: "Ann", Email: "ann@x.io"}, {Name: "Bo"}},
			[]domain.Contact{{Name: "Bo"}, {Name: "Annie", Email: "ann@x.io"}},
			false,
		},
		{
			"contact replaced",
			FieldAdditionalContacts,
			[]domain.Contact{{Name: "Ann"}},
			[]domain.Contact{{Name: "Bo"}},
			true,
		},
		{"same location", FieldLocation, domain.Location{Building: "HQ"}, domain.Location{Building: "HQ"}, false},
		{"location moved", FieldLocation, domain.Location{Building: "HQ"}, domain.Location{Building: "HQ", Floor: "2"}, true},
		{"same map", "metadata", map[string]any{"a": 1}, map[string]any{"a": 1}, false},
		{"map key count", "metadata", map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, true},
		{"map value", "metadata", map[string]any{"a": 1}, map[string]any{"a": 2}, true},
		{"scalar vs slice", FieldTags, "a", []string{"a"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsMeaningfulChange(tc.field, tc.old, tc.new))
		})
	}
}

func TestSameIDSet(t *testing.T) {
	assert.True(t, SameIDSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, SameIDSet(nil, []string{}))
	assert.True(t, SameIDSet([]string{"a", "a"}, []string{"a"}))
	assert.False(t, SameIDSet([]string{"a"}, []string{"a", "b"}))
	assert.False(t, SameIDSet([]string{"a", "b"}, []string{"a"}))
}
