package mongo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// makeSlug derives a URL-safe slug from a store name.
func makeSlug(name string) string {
	return slug.Make(name)
}

// resolveSlugCollision picks the next free slug given the slugs already
// taken for the same base: base itself when free, otherwise base-N with N
// one past the highest suffix in use.
func resolveSlugCollision(base string, existing []string) string {
	if len(existing) == 0 {
		return base
	}

	taken := make(map[string]struct{}, len(existing))
	highest := 0
	for _, s := range existing {
		taken[s] = struct{}{}
		rest := strings.TrimPrefix(s, base)
		if rest == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "-"))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	if _, ok := taken[base]; !ok {
		return base
	}
	return fmt.Sprintf("%s-%d", base, highest+1)
}
