// Package web embeds the HTML templates of the public pages.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
