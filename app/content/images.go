package content

import "regexp"

// ImageRef is a markdown image reference found in a post body.
type ImageRef struct {
	StartPos int
	EndPos   int
	Alt      string
	Path     string
}

var imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)

// ExtractImages returns all image references of the body, in order of
// appearance.
func ExtractImages(body string) []ImageRef {
	var refs []ImageRef
	for _, m := range imageRe.FindAllStringSubmatchIndex(body, -1) {
		refs = append(refs, ImageRef{
			StartPos: m[0],
			EndPos:   m[1],
			Alt:      body[m[2]:m[3]],
			Path:     body[m[4]:m[5]],
		})
	}
	return refs
}
