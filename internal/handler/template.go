package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	},
}

// Pages are parsed as per-page sets of layout.html plus the page file so
// every page can define its own "content" block.
var pages = []string{"booking.html", "contact.html", "confirm.html"}

// ParseTemplates loads the page sets from fsys, which must contain a
// templates/ directory.
func ParseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

type renderer struct {
	templates map[string]*template.Template
	siteName  string
	logger    *slog.Logger
}

func (rr *renderer) render(w http.ResponseWriter, status int, name string, data map[string]any) {
	tmpl, ok := rr.templates[name]
	if !ok {
		rr.logger.Error("template not found", "name", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	data["SiteName"] = rr.siteName
	data["Year"] = time.Now().Year()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		rr.logger.Error("template render", "error", err)
	}
}

// redirect sends the submitter back to path with one query flag and a
// fragment selecting the banner.
func redirect(w http.ResponseWriter, r *http.Request, path, key, value, fragment string) {
	http.Redirect(w, r, path+"?"+key+"="+value+"#"+fragment, http.StatusSeeOther)
}
