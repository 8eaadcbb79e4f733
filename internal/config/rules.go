package config

import (
	"fmt"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/messages"
	"github.com/AbdelazizMoustafa10m/quill/internal/scope"
)

// ComposerRules maps a resolved config onto the composer's rule set.
func (c *Config) ComposerRules() commit.Rules {
	types := make([]commit.TypeDefinition, 0, len(c.Types))
	for _, t := range c.Types {
		types = append(types, commit.TypeDefinition{Key: t.Key, Description: t.Description})
	}

	var overrides map[string][]string
	if len(c.ScopeOverrides) > 0 {
		overrides = make(map[string][]string, len(c.ScopeOverrides))
		for typeKey, scopes := range c.ScopeOverrides {
			overrides[typeKey] = scopeNames(scopes)
		}
	}

	allowBreaking := make([]string, len(c.AllowBreakingChanges))
	copy(allowBreaking, c.AllowBreakingChanges)

	return commit.Rules{
		Types: types,
		Limits: commit.Limits{
			MaxHeaderWidth: c.MaxHeaderWidth,
			MaxLineWidth:   c.MaxLineWidth,
		},
		Scopes:               c.ScopeNames(),
		ScopeOverrides:       overrides,
		AllowCustomScopes:    boolValue(c.AllowCustomScopes),
		AllowBreakingChanges: allowBreaking,
		BreaklineChar:        c.BreaklineChar,
		FooterPrefix:         c.FooterPrefix,
		UpperCaseSubject:     boolValue(c.UpperCaseSubject),
	}
}

// NewComposer builds a composer from the config.
func (c *Config) NewComposer() (*commit.Composer, error) {
	comp, err := commit.NewComposer(c.ComposerRules())
	if err != nil {
		return nil, fmt.Errorf("building composer: %w", err)
	}
	return comp, nil
}

// NewCatalog builds the prompt message catalog for the configured language,
// with [messages] overrides applied.
func (c *Config) NewCatalog() (*messages.Catalog, error) {
	cat, err := messages.NewCatalog(messages.Options{
		Language:  c.Language,
		Overrides: c.Messages,
		Breakline: c.BreaklineChar,
	})
	if err != nil {
		return nil, fmt.Errorf("building message catalog: %w", err)
	}
	return cat, nil
}

// ScopeRules returns the scope detection rules for typeKey: the override
// list when one exists, otherwise the top-level scopes.
func (c *Config) ScopeRules(typeKey string) []scope.Rule {
	src := c.Scopes
	if override, ok := c.ScopeOverrides[typeKey]; ok {
		src = override
	}
	rules := make([]scope.Rule, 0, len(src))
	for _, s := range src {
		rules = append(rules, scope.Rule{Name: s.Name, Patterns: s.Paths})
	}
	return rules
}
