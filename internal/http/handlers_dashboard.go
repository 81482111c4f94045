package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"bankdash/internal/cache"
	"bankdash/internal/log"
	"bankdash/internal/presentation"
)

// PageTitle is shown in the browser tab and the page header.
const PageTitle = "Bank Statement Analyzer"

type pageData struct {
	Title       string
	Dark        bool
	Theme       string
	Tab         presentation.Tab
	Content     template.HTML
	Accept      string
	MaxUploadMB int64
}

type helpData struct {
	Title   string
	Dark    bool
	Heading string
	Items   []presentation.HelpItem
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}

	tab := parseTab(r)
	content, err := s.renderContent(r.Context(), tab)
	if err != nil {
		s.renderFailed(w, r, "content.html", err)
		return
	}

	t := s.themes.Current()
	data := pageData{
		Title:       PageTitle,
		Dark:        t.IsDark(),
		Theme:       t.String(),
		Tab:         tab,
		Content:     template.HTML(content), // rendered by html/template
		Accept:      strings.Join(s.uploads.Validator().Extensions, ","),
		MaxUploadMB: s.opts.UploadMaxBytes >> 20,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.renderFailed(w, r, "index.html", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleContent renders the metrics and the active tab panel.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}
	content, err := s.renderContent(r.Context(), parseTab(r))
	if err != nil {
		s.renderFailed(w, r, "content.html", err)
		return
	}
	NewHTMXResponse().Header("Content-Type", "text/html; charset=utf-8").Body(content).Write(w)
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}
	data := helpData{
		Title:   PageTitle,
		Dark:    s.themes.Current().IsDark(),
		Heading: presentation.HelpHeading,
		Items:   presentation.HelpItems,
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "help.html", data); err != nil {
		s.renderFailed(w, r, "help.html", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderContent returns the content partial for tab. Settled snapshots are
// served from the view cache; loading and error states are always rendered
// fresh.
func (s *Server) renderContent(ctx context.Context, tab presentation.Tab) ([]byte, error) {
	snap := s.loader.Store().Current()
	st := s.loader.Status()
	t := s.themes.Current()

	cacheable := snap != nil && st.Err == nil && !st.Loading
	var key cache.ViewKey
	if cacheable {
		key = cache.ViewKey{Version: snap.Version, Theme: t.String(), Tab: string(tab)}
		if b, ok := s.views.Get(key); ok {
			log.FromContext(ctx).DebugContext(ctx, "View cache hit",
				log.FieldVersion, key.Version, log.FieldTheme, key.Theme, log.FieldTab, key.Tab)
			return b, nil
		}
	}

	view := presentation.Build(snap, st, t, tab)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "content.html", view); err != nil {
		return nil, fmt.Errorf("render %s tab: %w", tab, err)
	}
	out := buf.Bytes()
	if cacheable {
		s.views.Set(key, out)
	}
	return out, nil
}

func (s *Server) templatesMissing(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentTemplate)
	http.Error(w, "templates not loaded", http.StatusInternalServerError)
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Template execution failed", err,
		log.ComponentTemplate, log.OpRender, log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
	InternalServerError("Failed to render " + strings.TrimSuffix(name, ".html")).Write(w)
}
