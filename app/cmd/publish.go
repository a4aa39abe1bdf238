// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Semior001/mediumpub/app/content"
	"github.com/Semior001/mediumpub/app/medium"
	"github.com/Semior001/mediumpub/app/upload"
	"github.com/Semior001/mediumpub/pkg/logx"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Publish is a command to publish a post to medium.
type Publish struct {
	Medium struct {
		URL     string        `long:"url" env:"URL" default:"https://api.medium.com" description:"medium API base URL"`
		Token   string        `long:"token" env:"TOKEN" required:"true" description:"medium integration token"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"1m" description:"timeout for medium API calls"`
	} `group:"medium" namespace:"medium" env-namespace:"MEDIUM"`

	ContentRoot   string `long:"content-root" env:"CONTENT_ROOT" default:"content" description:"directory with post directories"`
	CanonicalBase string `long:"canonical-base" env:"CANONICAL_BASE" description:"base URL to derive canonical post URLs from"`
}

// Execute runs the command, the single argument is the post slug.
func (p Publish) Execute(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one argument - the post slug")
	}
	slug := args[0]

	lg := slog.Default()
	ctx := logx.ContextWithRequestID(context.Background(), uuid.New().String())

	cl := medium.NewClient(
		lg.With(slog.String("prefix", "medium")),
		p.Medium.URL,
		p.Medium.Token,
		p.Medium.Timeout,
	)

	svc := content.NewService(
		lg.With(slog.String("prefix", "content")),
		upload.NewUploader(lg.With(slog.String("prefix", "upload")), cl),
		p.ContentRoot,
	)

	post, err := svc.Prepare(ctx, slug)
	if err != nil {
		return fmt.Errorf("prepare content: %w", err)
	}

	user, err := cl.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("get current user: %w", err)
	}

	story, err := cl.CreatePost(ctx, user.ID, medium.PostParams{
		Title:         post.Title,
		Content:       post.Content,
		Tags:          post.Tags,
		ContentFormat: "markdown",
		CanonicalURL:  p.canonicalURL(slug),
		PublishStatus: "public",
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	lg.InfoCtx(ctx, "post published", slog.String("url", story.URL))
	fmt.Println(story.URL)

	return nil
}

func (p Publish) canonicalURL(slug string) string {
	if p.CanonicalBase == "" {
		return ""
	}
	return strings.TrimSuffix(p.CanonicalBase, "/") + "/" + slug
}
