// Package assets ships the static files the exporter copies or renders:
// the bundled three.js graphics runtime and the default HTML page template.
package assets

import "embed"

//go:embed static/*
var static embed.FS

//go:embed templates/*
var templates embed.FS

// ThreeJS returns the bundled graphics runtime. This file is always copied
// next to the output artifact, never downloaded.
func ThreeJS() []byte {
	data, err := static.ReadFile("static/three.js")
	if err != nil {
		// The file is compiled into the binary; a read failure is a broken build.
		panic("assets: embedded three.js missing: " + err.Error())
	}
	return data
}

// PageTemplate returns the default HTML page template.
func PageTemplate() string {
	data, err := templates.ReadFile("templates/page.html")
	if err != nil {
		panic("assets: embedded page template missing: " + err.Error())
	}
	return string(data)
}
