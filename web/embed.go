package web

import "embed"

// Content holds the embedded planner page and its assets.
//
//go:embed index.html app.js styles.css
var Content embed.FS
