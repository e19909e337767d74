// Package content embeds the sample quiz catalog served when no other catalog is
// configured.
package content

import (
	"embed"
	"io/fs"
)

//go:embed quizzes
var quizzes embed.FS

// Quizzes returns the catalog tree rooted at the topic directories.
func Quizzes() fs.FS {
	sub, err := fs.Sub(quizzes, "quizzes")
	if err != nil {
		panic(err)
	}
	return sub
}
