// Package web embeds the single-page study UI.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html assets/*
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}

// Assets is the assets/ subtree, served under /assets.
func Assets() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
