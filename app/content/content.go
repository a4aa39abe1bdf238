// Package content prepares locally authored markdown posts for publishing.
package content

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Metadata is the front-matter block of a post.
type Metadata struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	FeaturedImage string   `yaml:"featuredImage"`
	YouTubeVideo  string   `yaml:"youTubeVideo"`
	Keywords      []string `yaml:"keywords"`
	Demo          string   `yaml:"demo"`
	GitHub        string   `yaml:"github"`
}

// Post is an assembled post, ready for submission.
type Post struct {
	Title   string
	Tags    []string
	Content string
}

// Uploader uploads a local image and returns its hosted URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Service loads posts from the content root and prepares them for medium.
type Service struct {
	log      *slog.Logger
	uploader Uploader
	root     string
}

// NewService creates new Service.
func NewService(lg *slog.Logger, uploader Uploader, root string) *Service {
	return &Service{log: lg, uploader: uploader, root: root}
}

// Prepare loads the post by its slug, uploads every local image it
// references and returns the post with remote image URLs substituted.
func (s *Service) Prepare(ctx context.Context, slug string) (Post, error) {
	doc, err := s.load(slug)
	if err != nil {
		return Post{}, err
	}

	refs := ExtractImages(doc.Body)
	local := lo.Filter(refs, func(ref ImageRef, _ int) bool { return !isRemote(ref.Path) })

	paths := lo.Map(local, func(ref ImageRef, _ int) string { return ref.Path })
	if doc.Meta.FeaturedImage != "" {
		paths = append(paths, doc.Meta.FeaturedImage)
	}

	urls, err := s.uploadAll(ctx, filepath.Join(s.root, slug), paths)
	if err != nil {
		return Post{}, err
	}

	s.log.DebugCtx(ctx, "uploaded post images",
		slog.String("slug", slug),
		slog.Int("count", len(urls)),
	)

	body := substituteImages(doc.Body, local, urls)

	return assemble(doc.Meta, urls[doc.Meta.FeaturedImage], body), nil
}

// PrepareLocal assembles the post without touching the network, leaving
// all image references as they are. Used for local preview.
func (s *Service) PrepareLocal(slug string) (Post, error) {
	doc, err := s.load(slug)
	if err != nil {
		return Post{}, err
	}

	return assemble(doc.Meta, doc.Meta.FeaturedImage, doc.Body), nil
}

type document struct {
	Meta Metadata
	Body string
}

func (s *Service) load(slug string) (document, error) {
	path := filepath.Join(s.root, slug, "index.md")

	f, err := os.Open(path)
	if err != nil {
		return document{}, fmt.Errorf("open post file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("failed to close post file", slog.Any("err", err))
		}
	}()

	var meta Metadata
	body, err := frontmatter.Parse(f, &meta)
	if err != nil {
		return document{}, fmt.Errorf("parse front-matter of %s: %w", path, err)
	}

	if meta.Title == "" {
		return document{}, fmt.Errorf("parse front-matter of %s: title is required", path)
	}

	return document{Meta: meta, Body: strings.TrimSpace(string(body))}, nil
}

// uploadAll uploads all images at the given paths, relative to dir, and
// returns a map from the original path to the hosted URL. Uploads run
// concurrently, the first failure fails the whole batch.
func (s *Service) uploadAll(ctx context.Context, dir string, paths []string) (map[string]string, error) {
	uniq := lo.Uniq(paths)
	urls := make([]string, len(uniq))

	ewg, ctx := errgroup.WithContext(ctx)
	for i, p := range uniq {
		i, p := i, p
		ewg.Go(func() error {
			u, err := s.uploader.Upload(ctx, filepath.Join(dir, p))
			if err != nil {
				return fmt.Errorf("upload image %s: %w", p, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := ewg.Wait(); err != nil {
		return nil, err
	}

	res := make(map[string]string, len(uniq))
	for i, p := range uniq {
		res[p] = urls[i]
	}
	return res, nil
}

// substituteImages rewrites the given image references to their uploaded
// URLs. Refs must be ordered by position, refs without an uploaded URL
// are left as they are.
func substituteImages(body string, refs []ImageRef, urls map[string]string) string {
	sb := &strings.Builder{}
	last := 0

	for _, ref := range refs {
		u, ok := urls[ref.Path]
		if !ok {
			continue
		}
		sb.WriteString(body[last:ref.StartPos])
		fmt.Fprintf(sb, "![%s](%s)", ref.Alt, u)
		last = ref.EndPos
	}
	sb.WriteString(body[last:])

	return sb.String()
}

// assemble prepends promotional lines to the body in the fixed order:
// featured image, youtube link, github/demo links.
func assemble(meta Metadata, featuredURL, body string) Post {
	var inserts []string

	if meta.FeaturedImage != "" {
		inserts = append(inserts, fmt.Sprintf("![](%s)", featuredURL))
	}

	if meta.YouTubeVideo != "" {
		inserts = append(inserts, fmt.Sprintf("[Watch the video on YouTube](%s)", meta.YouTubeVideo))
	}

	var links []string
	if meta.GitHub != "" {
		links = append(links, fmt.Sprintf("[GitHub](%s)", meta.GitHub))
	}
	if meta.Demo != "" {
		links = append(links, fmt.Sprintf("[Demo](%s)", meta.Demo))
	}
	if len(links) > 0 {
		inserts = append(inserts, strings.Join(links, " | "))
	}

	return Post{
		Title:   meta.Title,
		Tags:    meta.Keywords,
		Content: strings.Join(append(inserts, body), "\n\n"),
	}
}

func isRemote(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.Scheme != ""
}
