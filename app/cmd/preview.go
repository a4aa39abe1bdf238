package cmd

import (
	"fmt"

	"github.com/Semior001/mediumpub/app/content"
	"golang.org/x/exp/slog"
)

// Preview is a command to render a post to HTML without publishing it.
// Images are not uploaded, local references are kept as they are.
type Preview struct {
	ContentRoot string `long:"content-root" env:"CONTENT_ROOT" default:"content" description:"directory with post directories"`
}

// Execute runs the command, the single argument is the post slug.
func (p Preview) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument - the post slug")
	}

	svc := content.NewService(
		slog.Default().With(slog.String("prefix", "content")),
		nil, // preview never uploads
		p.ContentRoot,
	)

	post, err := svc.PrepareLocal(args[0])
	if err != nil {
		return fmt.Errorf("prepare content: %w", err)
	}

	html, err := content.RenderHTML(post.Content)
	if err != nil {
		return fmt.Errorf("render post: %w", err)
	}

	fmt.Println(html)

	return nil
}
