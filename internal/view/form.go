package view

import (
	"embed"
	"html/template"

	"github.com/Ayash-Bera/medquery/internal/container"
)

const (
	Title = "Holistic Expert System"

	labelSubmit     = "Submit"
	labelProcessing = "Processing…"

	// Placeholder shown in an empty query box.
	Placeholder = "Type your question. For example: How does vitamin C affect iron absorption?"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Form is the query form: the text it holds and whether a submission is in
// flight. It performs no validation.
type Form struct {
	Query     string
	IsLoading bool
}

func (f Form) Disabled() bool {
	return f.IsLoading
}

func (f Form) ButtonLabel() string {
	if f.IsLoading {
		return labelProcessing
	}
	return labelSubmit
}

// Page is everything the index template needs. The error banner renders
// before the response panel.
type Page struct {
	Title       string
	Placeholder string
	Form        Form
	Error       string
	Response    *Response
	// RefreshSeconds > 0 makes the page poll until the submission finishes.
	RefreshSeconds int
}

func NewPage(state container.UIState) Page {
	page := Page{
		Title:       Title,
		Placeholder: Placeholder,
		Form: Form{
			Query:     state.Query,
			IsLoading: state.IsLoading,
		},
		Error: state.Error,
	}

	if state.HasResponse() {
		resp := NarrowResponse(state.Response)
		page.Response = &resp
	}
	if state.IsLoading {
		page.RefreshSeconds = 1
	}

	return page
}

// Templates parses the embedded HTML templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}
