package recommend

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankx-ai/frankx/pkg/persona"
)

func testCatalogs(t *testing.T) ([]persona.Agent, []Resource) {
	t.Helper()
	agents, err := persona.LoadBuiltinAgents("")
	require.NoError(t, err)
	resources, err := LoadResources("")
	require.NoError(t, err)
	return agents, resources
}

func TestParseProfile(t *testing.T) {
	values := url.Values{
		"industry":   {"music"},
		"stage":      {"exploring"},
		"goals":      {"automation, writing"},
		"challenges": {"governance"},
	}
	p, err := ParseProfile(values)
	require.NoError(t, err)
	assert.Equal(t, "music", p.Industry)
	assert.Equal(t, "exploring", p.Stage)
	assert.Equal(t, []string{"automation", "writing"}, p.Goals)
	assert.Equal(t, []string{"governance"}, p.Challenges)

	empty, err := ParseProfile(url.Values{})
	require.NoError(t, err)
	assert.True(t, empty.isEmpty())

	// unknown keys are ignored, not an error
	odd, err := ParseProfile(url.Values{"utm_source": {"newsletter"}})
	require.NoError(t, err)
	assert.True(t, odd.isEmpty())
}

func TestEngine_EmptyProfileReturnsCatalogOrder(t *testing.T) {
	agents, resources := testCatalogs(t)
	e := NewEngine(agents, resources)

	gotAgents := e.RecommendAgents(Profile{})
	require.Len(t, gotAgents, len(agents))
	for i := range agents {
		assert.Equal(t, agents[i].ID, gotAgents[i].ID)
	}

	gotResources := e.RecommendResources(Profile{})
	require.Len(t, gotResources, len(resources))
	for i := range resources {
		assert.Equal(t, resources[i].ID, gotResources[i].ID)
	}
}

func TestEngine_RankingPutsMatchesFirst(t *testing.T) {
	agents, resources := testCatalogs(t)
	e := NewEngine(agents, resources)

	p := Profile{Goals: []string{"research"}}
	got := e.RecommendAgents(p)
	require.NotEmpty(t, got)
	assert.Equal(t, "research-scout", got[0].ID)

	p = Profile{Industry: "music"}
	gotRes := e.RecommendResources(p)
	require.NotEmpty(t, gotRes)
	assert.Equal(t, "ai-music-course", gotRes[0].ID)
}

func TestEngine_Deterministic(t *testing.T) {
	agents, resources := testCatalogs(t)
	e := NewEngine(agents, resources)

	p := Profile{
		Stage:      "scaling",
		Goals:      []string{"governance", "strategy"},
		Challenges: []string{"automation"},
	}
	first := e.RecommendAgents(p)
	second := e.RecommendAgents(p)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	firstRes := e.RecommendResources(p)
	secondRes := e.RecommendResources(p)
	require.Equal(t, len(firstRes), len(secondRes))
	for i := range firstRes {
		assert.Equal(t, firstRes[i].ID, secondRes[i].ID)
	}
}

func TestEngine_TiesKeepDeclaredOrder(t *testing.T) {
	agents := []persona.Agent{
		{ID: "a", Capabilities: []string{"chat"}},
		{ID: "b", Capabilities: []string{"chat"}},
		{ID: "c", Capabilities: []string{"other"}},
	}
	e := NewEngine(agents, nil)

	got := e.RecommendAgents(Profile{Goals: []string{"chat"}})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestEngine_CaseInsensitiveTags(t *testing.T) {
	agents := []persona.Agent{
		{ID: "a", Capabilities: []string{"Writing"}},
		{ID: "b", Capabilities: []string{"other"}},
	}
	e := NewEngine(agents, nil)

	got := e.RecommendAgents(Profile{Goals: []string{"WRITING"}})
	assert.Equal(t, "a", got[0].ID)
}
