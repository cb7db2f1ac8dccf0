package model

// SourceKind identifies where a field obtains its selectable options.
type SourceKind string

const (
	SourceStatic    SourceKind = "static"
	SourceEmbedded  SourceKind = "embedded"
	SourceTransform SourceKind = "transform"
	SourceRemote    SourceKind = "remote"
)

// Paginated reports whether the source honours offset/limit windows.
func (k SourceKind) Paginated() bool {
	return k == SourceEmbedded || k == SourceRemote
}

// Valid reports whether k is one of the supported source kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceStatic, SourceEmbedded, SourceTransform, SourceRemote:
		return true
	default:
		return false
	}
}

// RemoteMode selects how a remote source builds its request URL.
type RemoteMode string

const (
	// RemoteModeURL uses the configured URL, rooting relative paths at the
	// platform base URL.
	RemoteModeURL RemoteMode = "url"
	// RemoteModeResource targets the submissions of a platform resource form.
	RemoteModeResource RemoteMode = "resource"
)

// FilterMode selects the client-side search strategy for embedded sources.
//
// The two modes keep the historical behaviour of the widgets: FilterStartsWith
// matches the search text anywhere in the display text while FilterContains
// (and the zero value) only matches at the start. The names are swapped
// relative to what they do; see DESIGN.md before changing either branch.
type FilterMode string

const (
	FilterStartsWith FilterMode = "startsWith"
	FilterContains   FilterMode = "contains"
)

// RefreshOnRecord is the RefreshOn sentinel that reloads a field whenever any
// value in the record changes.
const RefreshOnRecord = "data"

// Widget identifies the widget consuming the engine.
type Widget string

const (
	WidgetRadio       Widget = "radio"
	WidgetSelectBoxes Widget = "selectboxes"
)

// Trigger records why a load was requested.
type Trigger string

const (
	TriggerInitial  Trigger = "initial"
	TriggerRefresh  Trigger = "refresh"
	TriggerSearch   Trigger = "search"
	TriggerLoadMore Trigger = "loadMore"
)

// LoadRequest describes one fetch attempt. Offset acts as the page token for
// paginated sources.
type LoadRequest struct {
	SearchText string
	URL        string
	Offset     int
	Limit      int
	Append     bool
	Trigger    Trigger
}

// LoadState is the single-flight lifecycle of a field.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
)

// PaginationState is the offset/limit window of a paginated field.
type PaginationState struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}
