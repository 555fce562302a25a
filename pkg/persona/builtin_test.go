package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinPersonas_Defaults(t *testing.T) {
	ps, err := LoadBuiltinPersonas("")
	require.NoError(t, err)
	require.NotEmpty(t, ps)

	ids := make(map[string]bool)
	for _, p := range ps {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.SystemPrompt, "persona %s has no system prompt", p.ID)
		assert.False(t, ids[p.ID], "duplicate persona id %s", p.ID)
		ids[p.ID] = true
	}
	assert.True(t, ids["frankbot"])
}

func TestLoadBuiltinPersonas_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	content := `
personas:
  - id: greeter
    name: Greeter
    system_prompt: "Say hello."
    model: openai/gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ps, err := LoadBuiltinPersonas(path)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "greeter", ps[0].ID)
	assert.Equal(t, "Say hello.", ps[0].SystemPrompt)
}

func TestLoadBuiltinPersonas_Errors(t *testing.T) {
	_, err := LoadBuiltinPersonas("/no/such/file.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personas: [not: closed"), 0o644))
	_, err = LoadBuiltinPersonas(path)
	assert.Error(t, err)
}

func TestLoadBuiltinAgents_Defaults(t *testing.T) {
	as, err := LoadBuiltinAgents("")
	require.NoError(t, err)
	require.NotEmpty(t, as)

	var frankbot *Agent
	for i := range as {
		if as[i].ID == "frankbot" {
			frankbot = &as[i]
		}
	}
	require.NotNil(t, frankbot)
	assert.True(t, frankbot.Memory)
	assert.NotEmpty(t, frankbot.Capabilities)
}

func TestLoadBuiltinAgents_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := `
agents:
  - id: helper
    name: Helper
    system_prompt: "Assist."
    capabilities: [chat]
    memory: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	as, err := LoadBuiltinAgents(path)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "helper", as[0].ID)
	assert.True(t, as[0].Memory)
	assert.Equal(t, []string{"chat"}, as[0].Capabilities)
}
