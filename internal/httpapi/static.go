package httpapi

import (
	"embed"
	"io/fs"
	"net/http"
)

// embeddedStatic holds the app icon referenced by the welcome card.
//
//go:embed static/*
var embeddedStatic embed.FS

func newAssetHandler() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(sub))
}
