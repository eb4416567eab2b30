package http

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageSet holds one template per page, each combined with the shared layout.
type pageSet struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func loadPages(logger *slog.Logger) (*pageSet, error) {
	set := &pageSet{pages: make(map[string]*template.Template), logger: defaultLogger(logger)}
	for _, name := range []string{"overview", "reserve", "lookup"} {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		set.pages[name] = tmpl
	}
	return set, nil
}

// render executes the page into a buffer first so a template failure still
// produces a clean 500.
func (p *pageSet) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := p.pages[name]
	if !ok {
		p.fail(ctx, w, fmt.Errorf("unknown page %q", name))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		p.fail(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.loggerFor(ctx).WarnContext(ctx, "failed to write page", "page", name, "error", err)
	}
}

func (p *pageSet) fail(ctx context.Context, w http.ResponseWriter, err error) {
	p.loggerFor(ctx).ErrorContext(ctx, "failed to render page", "error", err)
	http.Error(w, messageInternal, http.StatusInternalServerError)
}

func (p *pageSet) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return p.logger
}
