// Package templates embeds the HTML templates shipped with the binary.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
