package entity

// WorkspaceID identifies the workspace (window surface) a panel lives in.
type WorkspaceID string

// PanelID identifies a browser panel within a workspace.
type PanelID string

// OpenTab is a read-only snapshot of one open browser surface, used for
// switch-to-tab suggestions. Snapshots are fetched synchronously from the
// host once per suggestion refresh.
type OpenTab struct {
	WorkspaceID WorkspaceID
	PanelID     PanelID
	URL         string
	Title       string
}
