// Package selection owns the shell's single navigation target: which
// project, change, task view, or settings screen the content pane shows.
package selection

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which navigation target an Item points at.
// The set is closed; the content router switches over it exhaustively.
type Kind string

const (
	KindNone            Kind = "none"
	KindProject         Kind = "project"
	KindChange          Kind = "change"
	KindStandaloneTasks Kind = "standalone_tasks"
	KindBacklog         Kind = "backlog"
	KindProjectSettings Kind = "project_settings"
	KindAgent           Kind = "agent"
	KindPostTask        Kind = "post_task"
	KindArchived        Kind = "archived"
	KindDocs            Kind = "docs"
	KindAlerts          Kind = "alerts"
	KindSettings        Kind = "settings"
)

// Kinds returns every valid kind, including KindNone.
// Tests use this to assert exhaustive handling at dispatch points.
func Kinds() []Kind {
	return []Kind{
		KindNone,
		KindProject,
		KindChange,
		KindStandaloneTasks,
		KindBacklog,
		KindProjectSettings,
		KindAgent,
		KindPostTask,
		KindArchived,
		KindDocs,
		KindAlerts,
		KindSettings,
	}
}

// Item is a navigation target. Exactly one variant is active at a time;
// the zero-ish None() item means nothing is selected. Identifiers are
// opaque strings the shell never interprets. Items are replaced wholesale,
// never patched.
type Item struct {
	Kind      Kind   `json:"kind"`
	ProjectID string `json:"project_id,omitempty"`
	ChangeID  string `json:"change_id,omitempty"`
}

// None is the empty selection.
func None() Item { return Item{Kind: KindNone} }

// Project targets a project's overview.
func Project(projectID string) Item {
	return Item{Kind: KindProject, ProjectID: projectID}
}

// Change targets one change within a project.
func Change(projectID, changeID string) Item {
	return Item{Kind: KindChange, ProjectID: projectID, ChangeID: changeID}
}

// StandaloneTasks targets a project's tasks that belong to no change.
func StandaloneTasks(projectID string) Item {
	return Item{Kind: KindStandaloneTasks, ProjectID: projectID}
}

// Backlog targets a project's backlog.
func Backlog(projectID string) Item {
	return Item{Kind: KindBacklog, ProjectID: projectID}
}

// ProjectSettings targets a project's settings screen.
func ProjectSettings(projectID string) Item {
	return Item{Kind: KindProjectSettings, ProjectID: projectID}
}

// Agent targets a project's agent session. changeID may be empty when the
// session is not scoped to a change.
func Agent(projectID, changeID string) Item {
	return Item{Kind: KindAgent, ProjectID: projectID, ChangeID: changeID}
}

// PostTask targets a project's task submission screen.
func PostTask(projectID string) Item {
	return Item{Kind: KindPostTask, ProjectID: projectID}
}

// Archived targets a project's archive. changeID may be empty to show the
// whole archive rather than one archived change.
func Archived(projectID, changeID string) Item {
	return Item{Kind: KindArchived, ProjectID: projectID, ChangeID: changeID}
}

// Docs targets a project's documents.
func Docs(projectID string) Item {
	return Item{Kind: KindDocs, ProjectID: projectID}
}

// Alerts targets a project's alerts.
func Alerts(projectID string) Item {
	return Item{Kind: KindAlerts, ProjectID: projectID}
}

// Settings targets the global settings screen. It carries no project scope.
func Settings() Item { return Item{Kind: KindSettings} }

// IsNone reports whether nothing is selected.
func (i Item) IsNone() bool { return i.Kind == KindNone }

// Validate checks the variant invariants: every kind except settings and
// none requires a project id, and a change additionally requires a change
// id. Unknown kinds are rejected so corrupted persisted values never leak
// into the shell.
func (i Item) Validate() error {
	switch i.Kind {
	case KindNone, KindSettings:
		return nil
	case KindChange:
		if i.ProjectID == "" {
			return fmt.Errorf("%s selection requires a project id", i.Kind)
		}
		if i.ChangeID == "" {
			return fmt.Errorf("%s selection requires a change id", i.Kind)
		}
		return nil
	case KindProject, KindStandaloneTasks, KindBacklog, KindProjectSettings,
		KindAgent, KindPostTask, KindArchived, KindDocs, KindAlerts:
		if i.ProjectID == "" {
			return fmt.Errorf("%s selection requires a project id", i.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown selection kind %q", i.Kind)
	}
}

// Encode serializes the item for persistence.
func (i Item) Encode() (string, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return "", fmt.Errorf("encoding selection: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted selection and validates it. Callers treat any
// error as "nothing persisted".
func Decode(raw string) (Item, error) {
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return Item{}, fmt.Errorf("decoding selection: %w", err)
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}
