package editor

import (
	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/draft"
	"github.com/abhisek/assessor/internal/ops"
)

// buildDoneMsg is sent when a build trigger settles.
type buildDoneMsg struct {
	Result ops.Result[api.BuildResponse]
}

// previewDoneMsg is sent when a preview trigger settles.
type previewDoneMsg struct {
	Result ops.Result[api.PreviewResponse]
}

// translateDoneMsg carries a translation of Text, read from Source, for the
// target row. Token is the target's trigger count when the request was sent.
type translateDoneMsg struct {
	Source   row
	Target   row
	Text     string
	Token    uint64
	Response api.TranslateResponse
}

// categoriesMsg carries category suggestions for the query typed into an
// entry's category field.
type categoriesMsg struct {
	Entry   draft.EntryID
	Query   string
	Results []api.CategorySearchResult
}

// competencesMsg carries competence suggestions for the query typed into an
// entry's name field.
type competencesMsg struct {
	Entry   draft.EntryID
	Query   string
	Results []api.CompetenceSearchResult
}

// exportDoneMsg is sent after the draft has been written to disk.
type exportDoneMsg struct {
	Path string
	Err  error
}
