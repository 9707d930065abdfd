package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/ops"
	"github.com/bigviv/CleanSheet/internal/rewrite"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

var variants = []rewrite.EnglishVariant{rewrite.VariantUK, rewrite.VariantUS}

func (h *Handlers) rewritePage(text string, opts rewrite.Options) RewritePageData {
	return RewritePageData{
		PageData: PageData{
			Title:   "Rewrite",
			Version: h.renderer.version,
			Nav:     "rewrite",
		},
		Text:          text,
		Options:       opts,
		DocumentTypes: rewrite.DocumentTypes,
		Variants:      variants,
		MaxInputChars: h.cfg.MaxInputChars,
	}
}

// HandleRewriteForm handles GET /rewrite: the form, pre-filled from saved settings.
func (h *Handlers) HandleRewriteForm(w http.ResponseWriter, r *http.Request) {
	saved, err := ops.GetSettings(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, r, "rewrite", h.rewritePage("", saved.Options))
}

// HandleRewrite handles POST /rewrite: run the pipeline over the submitted
// text with the submitted options. With save=true the options also become
// the saved settings.
func (h *Handlers) HandleRewrite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	opts := optionsFromForm(r)
	text := r.PostFormValue("text")

	result, err := ops.Rewrite(r.Context(), h.db, h.cfg, ops.RewriteInput{Text: text, Options: &opts})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	saved := false
	if formBool(r, "save") {
		if _, err := ops.SaveSettings(r.Context(), h.db, result.Options); err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		saved = true
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := h.rewritePage(text, result.Options)
	data.Result = result
	data.RenderedHTML = renderMarkdown(result.RewrittenText)
	data.SettingsSaved = saved

	// HTMX form posts target only the result panel.
	if r.Header.Get("HX-Target") == "result" {
		h.renderer.renderBlock(w, http.StatusOK, "rewrite", "rewrite-result", data)
		return
	}
	h.renderer.renderPage(w, r, "rewrite", data)
}

// HandleExamples handles GET /examples: list style examples.
func (h *Handlers) HandleExamples(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Tag:    q.Get("tag"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}
	active := q.Get("active")
	if b, err := strconv.ParseBool(active); err == nil {
		input.Active = &b
		active = strconv.FormatBool(b)
	} else {
		active = ""
	}

	result, err := ops.ListExamples(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "examples", ExamplesPageData{
		PageData: PageData{
			Title:   "Style examples",
			Version: h.renderer.version,
			Nav:     "examples",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Tag:        q.Get("tag"),
		Active:     active,
	})
}

// HandleCreateExample handles POST /examples: store a new style example.
func (h *Handlers) HandleCreateExample(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.StoreExample(r.Context(), h.db, h.cfg, ops.StoreInput{
		Title:    r.PostFormValue("title"),
		Text:     r.PostFormValue("text"),
		Tags:     splitTags(r.PostFormValue("tags")),
		Inactive: formBool(r, "inactive"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, result)
		return
	}
	http.Redirect(w, r, "/examples/"+result.ID, http.StatusSeeOther)
}

// HandleExample handles GET /examples/{id}: view one style example.
func (h *Handlers) HandleExample(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("example ID is required"))
		return
	}

	e, err := ops.FetchExample(r.Context(), h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, e)
		return
	}

	h.renderer.renderPage(w, r, "example", ExamplePageData{
		PageData: PageData{
			Title:   e.Title,
			Version: h.renderer.version,
			Nav:     "examples",
		},
		Example:      e,
		RenderedHTML: renderMarkdown(e.Text),
	})
}

// HandleToggle handles POST /examples/{id}/toggle: flip IsActive.
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("example ID is required"))
		return
	}

	current, err := ops.FetchExample(r.Context(), h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	result, err := ops.SetActive(r.Context(), h.db, h.cfg, id, !current.IsActive)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	back := "/examples/" + id
	if ref := r.PostFormValue("return_to"); ref == "/examples" {
		back = ref
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleDelete handles DELETE /examples/{id}: permanently delete an example.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("example ID is required"))
		return
	}

	result, err := ops.DeleteExample(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/examples")
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/examples", http.StatusSeeOther)
}

// optionsFromForm reads rewrite options from a submitted form. Unchecked
// boxes are absent from the form and read as false.
func optionsFromForm(r *http.Request) rewrite.Options {
	return rewrite.Options{
		ActiveVoice:         formBool(r, "active_voice"),
		ClearOwnership:      formBool(r, "clear_ownership"),
		SharperImpact:       formBool(r, "sharper_impact"),
		CalmTone:            formBool(r, "calm_tone"),
		Concise:             formBool(r, "concise"),
		AuditSafeMode:       formBool(r, "audit_safe_mode"),
		StandardiseSpelling: formBool(r, "standardise_spelling"),
		Owner:               strings.TrimSpace(r.PostFormValue("owner")),
		DocumentType:        rewrite.DocumentType(r.PostFormValue("document_type")),
		EnglishVariant:      rewrite.EnglishVariant(r.PostFormValue("english_variant")),
	}
}

// formBool reads a checkbox or boolean form field.
func formBool(r *http.Request, name string) bool {
	s := r.PostFormValue(name)
	return s == "on" || s == "true" || s == "1"
}

// splitTags splits a comma-separated tag field.
func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
