package models

// AppState holds the application state
type AppState struct {
	Width          int
	Height         int
	LeftPanelWidth int
	FocusedPanel   PanelType
	ViewMode       ViewMode

	Service     ServiceConfig
	CurrentExpr string
}

// PanelType identifies which panel is focused
type PanelType int

const (
	LeftPanel PanelType = iota
	RightPanel
)

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
	BuilderMode
)

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:          80,
		Height:         24,
		LeftPanelWidth: 30,
		FocusedPanel:   LeftPanel,
		ViewMode:       NormalMode,
	}
}

// FieldInfo describes a filterable index field
type FieldInfo struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // EDM type, e.g. Edm.String or Collection(Edm.String)
}
