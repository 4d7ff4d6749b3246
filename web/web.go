// Package web embeds the site assets: page templates, static files, the
// per-namespace translation documents and the flat server message catalog.
package web

import "embed"

// Site holds templates/ and static/, the filesystem handed to the server.
//
//go:embed templates static
var Site embed.FS

// Translations holds translations/{locale}/{namespace}.{json,toml,yaml}.
//
//go:embed translations
var Translations embed.FS

// Messages holds messages/messages.{lang}.toml for the error pages.
//
//go:embed messages
var Messages embed.FS
