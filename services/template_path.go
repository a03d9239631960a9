package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveTemplatePath finds the certificate template named by a settings value.
// The name is tried as given, then under root, then by its base name under
// root. Names saved on Windows machines may use backslash separators.
func ResolveTemplatePath(name, root string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: no template configured", ErrTemplateNotFound)
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(root, name))
	}
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	candidates = append(candidates, filepath.Join(root, base))

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}
