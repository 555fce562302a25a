package recommend

import (
	"sort"
	"strings"

	"github.com/frankx-ai/frankx/pkg/persona"
)

// Engine ranks the agent and resource catalogs against a profile.
// Stateless beyond the catalogs it was built with.
type Engine struct {
	agents    []persona.Agent
	resources []Resource
}

// NewEngine builds an Engine over the given catalogs. Catalog order is
// the tie-break and the empty-profile order.
func NewEngine(agents []persona.Agent, resources []Resource) *Engine {
	return &Engine{agents: agents, resources: resources}
}

// RecommendAgents returns the agent catalog ranked by tag overlap with
// the profile. An empty profile returns the full catalog in declared
// order.
func (e *Engine) RecommendAgents(p Profile) []persona.Agent {
	out := make([]persona.Agent, len(e.agents))
	copy(out, e.agents)

	tags := p.tagSet()
	if len(tags) == 0 {
		return out
	}

	scores := make(map[string]int, len(out))
	for _, a := range out {
		scores[a.ID] = overlap(a.Capabilities, tags)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i].ID] > scores[out[j].ID]
	})
	return out
}

// RecommendResources returns the resource catalog ranked by tag
// overlap with the profile.
func (e *Engine) RecommendResources(p Profile) []Resource {
	out := make([]Resource, len(e.resources))
	copy(out, e.resources)

	tags := p.tagSet()
	if len(tags) == 0 {
		return out
	}

	scores := make(map[string]int, len(out))
	for _, r := range out {
		scores[r.ID] = overlap(r.Tags, tags)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i].ID] > scores[out[j].ID]
	})
	return out
}

// overlap counts how many of the item's tags appear in the profile's
// tag set, case-insensitively.
func overlap(itemTags []string, profileTags map[string]bool) int {
	n := 0
	for _, t := range itemTags {
		if profileTags[strings.ToLower(t)] {
			n++
		}
	}
	return n
}
