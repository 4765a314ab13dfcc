// Package web embeds the page templates and browser assets served by the
// LoadoutLab server.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var assets embed.FS

// PageTemplates lists the templates the handlers parse, layout first
var PageTemplates = []string{"layout.html", "index.html", "forge.html"}

// GetTemplatesFS returns the page templates rooted at templates/
func GetTemplatesFS() fs.FS {
	return mustSub("templates")
}

// GetStaticFS returns the browser assets rooted at static/
func GetStaticFS() fs.FS {
	return mustSub("static")
}

// mustSub panics only if the embed directive and dir disagree
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
