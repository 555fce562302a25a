package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Resource is a recommendable catalog item: a guide, course, template,
// or tool pointer.
type Resource struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Type        string   `yaml:"type" json:"type"`
	URL         string   `yaml:"url,omitempty" json:"url,omitempty"`
	Tags        []string `yaml:"tags" json:"tags"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// defaultResources is the compiled-in resource catalog, in declared
// (tie-break) order.
var defaultResources = []Resource{
	{
		ID:          "ai-readiness-assessment",
		Title:       "AI Readiness Assessment",
		Type:        "assessment",
		URL:         "/resources/ai-readiness-assessment",
		Tags:        []string{"assessment", "strategy", "exploring", "enterprise"},
		Description: "Twenty questions that place your team on the AI maturity curve.",
	},
	{
		ID:          "coe-playbook",
		Title:       "Center of Excellence Playbook",
		Type:        "guide",
		URL:         "/resources/coe-playbook",
		Tags:        []string{"governance", "enterprise", "scaling", "strategy"},
		Description: "Charter templates and operating models for an AI CoE.",
	},
	{
		ID:          "first-pilot-guide",
		Title:       "Your First AI Pilot",
		Type:        "guide",
		URL:         "/resources/first-pilot-guide",
		Tags:        []string{"exploring", "adopting", "strategy"},
		Description: "Scoping, measuring, and shipping a first production use case.",
	},
	{
		ID:          "prompt-library",
		Title:       "Prompt Library for Creators",
		Type:        "template",
		URL:         "/resources/prompt-library",
		Tags:        []string{"writing", "creative", "marketing"},
		Description: "Field-tested prompts for content, campaigns, and courses.",
	},
	{
		ID:          "ai-music-course",
		Title:       "AI Music Production Course",
		Type:        "course",
		URL:         "/resources/ai-music-course",
		Tags:        []string{"music", "creative", "audio"},
		Description: "From first generation to a finished, released track.",
	},
	{
		ID:          "automation-toolkit",
		Title:       "Workflow Automation Toolkit",
		Type:        "toolkit",
		URL:         "/resources/automation-toolkit",
		Tags:        []string{"automation", "tooling", "scaling"},
		Description: "Recipes for wiring AI into everyday team workflows.",
	},
}

type resourceCatalogFile struct {
	Resources []Resource `yaml:"resources"`
}

// LoadResources loads the resource catalog from path, or the
// compiled-in defaults when path is empty.
func LoadResources(path string) ([]Resource, error) {
	if path == "" {
		return defaultResources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource catalog %s: %w", path, err)
	}

	var file resourceCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse resource catalog %s: %w", path, err)
	}
	return file.Resources, nil
}
