package merge

import (
	"github.com/tabular-io/tabular/internal/meta"
)

// UniqueSources returns each distinct source across the operands exactly
// once, ordered by first appearance in operand order. Identity is content
// based, so the same source loaded from two sidecars deduplicates.
func UniqueSources(operands []Operand) []meta.Source {
	return uniqueSources(annotatedMetas(operands))
}

// UniqueOrigins is UniqueSources for structured provenance records.
func UniqueOrigins(operands []Operand) []meta.Origin {
	return uniqueOrigins(annotatedMetas(operands))
}

// UniqueLicenses is UniqueSources for license records.
func UniqueLicenses(operands []Operand) []meta.License {
	return uniqueLicenses(annotatedMetas(operands))
}

func uniqueSources(metas []*meta.Meta) []meta.Source {
	var out []meta.Source

	seen := make(map[string]struct{})

	for _, m := range metas {
		for _, s := range m.Sources {
			key, err := meta.ContentHash(s)
			if err != nil {
				continue
			}

			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}
			out = append(out, s)
		}
	}

	return out
}

func uniqueOrigins(metas []*meta.Meta) []meta.Origin {
	var out []meta.Origin

	seen := make(map[string]struct{})

	for _, m := range metas {
		for _, o := range m.Origins {
			key, err := meta.ContentHash(o)
			if err != nil {
				continue
			}

			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}
			out = append(out, o.Copy())
		}
	}

	return out
}

func uniqueLicenses(metas []*meta.Meta) []meta.License {
	var out []meta.License

	seen := make(map[meta.License]struct{})

	for _, m := range metas {
		for _, l := range m.Licenses {
			if _, ok := seen[l]; ok {
				continue
			}

			seen[l] = struct{}{}
			out = append(out, l)
		}
	}

	return out
}

func uniqueStrings(metas []*meta.Meta, get func(*meta.Meta) []string) []string {
	var out []string

	seen := make(map[string]struct{})

	for _, m := range metas {
		for _, s := range get(m) {
			if _, ok := seen[s]; ok {
				continue
			}

			seen[s] = struct{}{}
			out = append(out, s)
		}
	}

	return out
}
