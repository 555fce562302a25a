// Package recommend ranks agents and resources against a coarse user
// profile. Pure lookup and filter: identical input yields identical
// output, and absent profile fields are simply ignored.
package recommend

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Profile is the coarse user profile driving recommendations. All
// fields are optional.
type Profile struct {
	// Industry the user works in (e.g. "music", "consulting").
	Industry string `json:"industry,omitempty" mapstructure:"industry"`

	// Stage of AI maturity (exploring, adopting, scaling, transforming).
	Stage string `json:"stage,omitempty" mapstructure:"stage"`

	// Goals the user wants to reach.
	Goals []string `json:"goals,omitempty" mapstructure:"goals"`

	// Challenges the user is facing.
	Challenges []string `json:"challenges,omitempty" mapstructure:"challenges"`
}

// ParseProfile decodes a profile from query-string values. List fields
// accept repeated keys and comma-separated values.
func ParseProfile(values url.Values) (Profile, error) {
	raw := make(map[string]interface{})
	for key, vals := range values {
		switch key {
		case "goals", "challenges":
			var items []string
			for _, v := range vals {
				for _, part := range strings.Split(v, ",") {
					if part = strings.TrimSpace(part); part != "" {
						items = append(items, part)
					}
				}
			}
			raw[key] = items
		case "industry", "stage":
			if len(vals) > 0 {
				raw[key] = vals[0]
			}
		}
	}

	var p Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Profile{}, fmt.Errorf("failed to build profile decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, nil
}

// tagSet collects every profile field as a lowercase tag.
func (p Profile) tagSet() map[string]bool {
	tags := make(map[string]bool)
	add := func(s string) {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			tags[s] = true
		}
	}
	add(p.Industry)
	add(p.Stage)
	for _, g := range p.Goals {
		add(g)
	}
	for _, c := range p.Challenges {
		add(c)
	}
	return tags
}

// isEmpty reports whether no ranking criteria are present.
func (p Profile) isEmpty() bool {
	return len(p.tagSet()) == 0
}
