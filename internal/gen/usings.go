package gen

import (
	"sort"

	"github.com/unitytools/medigen/internal/model"
)

// CollectUsings unions the using directives of every source unit that
// contributed at least one registration. Directives are deduplicated by
// exact literal text (already trimmed at ingestion), the two fixed
// framework imports the preamble always emits are excluded, and the result
// is sorted so rendered output is stable regardless of parallel ingestion
// or map iteration order.
func CollectUsings(regs []model.Registration) []string {
	seenUnits := make(map[*model.SourceUnit]struct{})
	seen := make(map[string]struct{})
	var usings []string

	for _, reg := range regs {
		if reg.Unit == nil {
			continue
		}
		if _, done := seenUnits[reg.Unit]; done {
			continue
		}
		seenUnits[reg.Unit] = struct{}{}

		for _, u := range reg.Unit.Usings {
			if u == usingContainer || u == usingContracts {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			usings = append(usings, u)
		}
	}

	sort.Strings(usings)
	return usings
}
