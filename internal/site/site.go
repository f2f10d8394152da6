package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
)

//go:embed assets
var assets embed.FS

// Config is the client-side search configuration shipped with the page. It
// is passed in explicitly; the page script persists it in browser-local
// storage under a single entry and merges these defaults when absent.
type Config struct {
	SearchURL string `json:"url"`
	SearchKey string `json:"key"`
}

// Asset is one file of the generated site bundle.
type Asset struct {
	Key         string
	ContentType string
	Body        []byte
}

const errorPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Not found</title></head>
<body><h1>Page not found</h1><p><a href="/">Back to the movie stats search</a></p></body>
</html>
`

// Generate renders the static frontend bundle.
func Generate(cfg Config) ([]Asset, error) {
	tpl, err := template.ParseFS(assets, "assets/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	var page bytes.Buffer
	if err := tpl.Execute(&page, cfg); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	appJS, err := assets.ReadFile("assets/app.js")
	if err != nil {
		return nil, fmt.Errorf("read embedded script: %w", err)
	}
	styleCSS, err := assets.ReadFile("assets/style.css")
	if err != nil {
		return nil, fmt.Errorf("read embedded stylesheet: %w", err)
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode site config: %w", err)
	}

	return []Asset{
		{Key: "index.html", ContentType: "text/html; charset=utf-8", Body: page.Bytes()},
		{Key: "error.html", ContentType: "text/html; charset=utf-8", Body: []byte(errorPage)},
		{Key: "app.js", ContentType: "application/javascript", Body: appJS},
		{Key: "style.css", ContentType: "text/css", Body: styleCSS},
		{Key: "config.json", ContentType: "application/json", Body: cfgJSON},
	}, nil
}
