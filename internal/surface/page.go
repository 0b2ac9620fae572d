package surface

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

//go:embed web
var webFS embed.FS

var (
	resourceAttr = regexp.MustCompile(`(src|href)="([^"]+)"`)
	externalURL  = regexp.MustCompile(`^https?://`)
)

// RewriteResources points every relative src/href in html at the address
// returned by resolve. Absolute http(s) and data: references are kept.
func RewriteResources(html string, resolve func(rel string) string) string {
	return resourceAttr.ReplaceAllStringFunc(html, func(match string) string {
		parts := resourceAttr.FindStringSubmatch(match)
		attr, ref := parts[1], parts[2]
		if externalURL.MatchString(ref) || strings.HasPrefix(ref, "data:") {
			return match
		}
		return fmt.Sprintf(`%s="%s"`, attr, resolve(ref))
	})
}

// LoadPage reads name from fsys and rewrites its resource references
func LoadPage(fsys fs.FS, name string, resolve func(rel string) string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("load page %s: %w", name, err)
	}
	return RewriteResources(string(data), resolve), nil
}

// assetURL maps a page-relative reference to the server's asset route
func assetURL(rel string) string {
	return "/assets/" + strings.TrimPrefix(path.Clean("/"+rel), "/")
}
