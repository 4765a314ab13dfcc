package web

import (
	"html/template"
	"io/fs"
	"testing"
)

func TestEmbeddedTemplatesExist(t *testing.T) {
	templatesFS := GetTemplatesFS()

	for _, file := range PageTemplates {
		_, err := fs.Stat(templatesFS, file)
		if err != nil {
			t.Errorf("required template %q not found: %v", file, err)
		}
	}
}

func TestEmbeddedStaticFilesExist(t *testing.T) {
	staticFS := GetStaticFS()

	requiredFiles := []string{
		"css/app.css",
		"js/api.js",
		"js/feed.js",
		"js/forge.js",
	}

	for _, file := range requiredFiles {
		_, err := fs.Stat(staticFS, file)
		if err != nil {
			t.Errorf("required static file %q not found: %v", file, err)
		}
	}
}

func TestTemplatesParse(t *testing.T) {
	templatesFS := GetTemplatesFS()

	for _, page := range []string{"index.html", "forge.html"} {
		tmpl, err := template.ParseFS(templatesFS, "layout.html", page)
		if err != nil {
			t.Fatalf("failed to parse %s: %v", page, err)
		}
		if tmpl.Lookup("layout") == nil || tmpl.Lookup("content") == nil {
			t.Errorf("%s should define layout and content", page)
		}
	}
}

func TestStaticFilesReadable(t *testing.T) {
	staticFS := GetStaticFS()

	content, err := fs.ReadFile(staticFS, "js/forge.js")
	if err != nil {
		t.Fatalf("failed to read js/forge.js: %v", err)
	}
	if len(content) == 0 {
		t.Error("js/forge.js is empty")
	}
}
