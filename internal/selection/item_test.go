package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_Constructors(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want Item
	}{
		{"none", None(), Item{Kind: KindNone}},
		{"project", Project("p1"), Item{Kind: KindProject, ProjectID: "p1"}},
		{"change", Change("p1", "c9"), Item{Kind: KindChange, ProjectID: "p1", ChangeID: "c9"}},
		{"standalone tasks", StandaloneTasks("p1"), Item{Kind: KindStandaloneTasks, ProjectID: "p1"}},
		{"backlog", Backlog("p1"), Item{Kind: KindBacklog, ProjectID: "p1"}},
		{"project settings", ProjectSettings("p1"), Item{Kind: KindProjectSettings, ProjectID: "p1"}},
		{"agent without change", Agent("p1", ""), Item{Kind: KindAgent, ProjectID: "p1"}},
		{"agent with change", Agent("p1", "c2"), Item{Kind: KindAgent, ProjectID: "p1", ChangeID: "c2"}},
		{"post task", PostTask("p1"), Item{Kind: KindPostTask, ProjectID: "p1"}},
		{"archived whole", Archived("p1", ""), Item{Kind: KindArchived, ProjectID: "p1"}},
		{"archived change", Archived("p1", "c3"), Item{Kind: KindArchived, ProjectID: "p1", ChangeID: "c3"}},
		{"docs", Docs("p1"), Item{Kind: KindDocs, ProjectID: "p1"}},
		{"alerts", Alerts("p1"), Item{Kind: KindAlerts, ProjectID: "p1"}},
		{"settings", Settings(), Item{Kind: KindSettings}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item)
			assert.NoError(t, tt.item.Validate())
		})
	}
}

func TestItem_ValidateRejectsMissingProjectID(t *testing.T) {
	// Every kind except settings and none requires a project id.
	for _, kind := range Kinds() {
		if kind == KindNone || kind == KindSettings {
			continue
		}
		err := Item{Kind: kind}.Validate()
		assert.Error(t, err, "kind %s should require a project id", kind)
	}
}

func TestItem_ValidateRejectsChangeWithoutChangeID(t *testing.T) {
	err := Item{Kind: KindChange, ProjectID: "p1"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "change id")
}

func TestItem_ValidateRejectsUnknownKind(t *testing.T) {
	err := Item{Kind: "dashboard", ProjectID: "p1"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown selection kind")
}

func TestItem_EncodeDecode(t *testing.T) {
	item := Change("proj-42", "chg-7")

	encoded, err := item.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"change","project_id":"proj-42","change_id":"chg-7"}`, encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, item, decoded)
}

func TestItem_EncodeOmitsEmptyIdentifiers(t *testing.T) {
	encoded, err := Settings().Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"settings"}`, encoded)
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	_, err := Decode("{not json")
	assert.Error(t, err)
}

func TestDecode_RejectsInvariantViolations(t *testing.T) {
	// Well-formed JSON that fails validation is still an error.
	_, err := Decode(`{"kind":"project"}`)
	require.Error(t, err)

	_, err = Decode(`{"kind":"workspace","project_id":"p1"}`)
	require.Error(t, err)
}

func TestKinds_CoversEveryConstructor(t *testing.T) {
	seen := make(map[Kind]bool)
	for _, kind := range Kinds() {
		seen[kind] = true
	}

	for _, item := range []Item{
		None(), Project("p"), Change("p", "c"), StandaloneTasks("p"),
		Backlog("p"), ProjectSettings("p"), Agent("p", ""), PostTask("p"),
		Archived("p", ""), Docs("p"), Alerts("p"), Settings(),
	} {
		assert.True(t, seen[item.Kind], "Kinds() is missing %s", item.Kind)
	}
	assert.Len(t, Kinds(), 12)
}
