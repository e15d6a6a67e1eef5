package strategy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Context is the custom strategy material for one analysis.
type Context struct {
	BaseStrategy string
	CustomPrompt string
	// Rules is the formatted rule text, empty when there is none.
	Rules        string
	ContentNames []string
}

// Resolver looks up custom strategy context for an analysis. A nil Context
// with a nil error means no custom strategy applies.
type Resolver interface {
	Resolve(ctx context.Context, symbol, strategyID, userID string) (*Context, error)
}

// Definition configures one custom strategy.
type Definition struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	BaseStrategy string    `yaml:"base_strategy"`
	CustomPrompt string    `yaml:"custom_prompt"`
	Contents     []Content `yaml:"contents"`
}

// Content is one named block of rule text, inline or loaded from a file.
type Content struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
	File string `yaml:"file"`
}

// Library resolves strategies defined in configuration.
type Library struct {
	defs  map[string]Definition
	order []string
}

// NewLibrary validates defs and loads any content files.
func NewLibrary(defs []Definition) (*Library, error) {
	l := &Library{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("strategy %q: id is required", d.Name)
		}
		if _, dup := l.defs[d.ID]; dup {
			return nil, fmt.Errorf("strategy %q: duplicate id", d.ID)
		}
		d.Contents = append([]Content(nil), d.Contents...)
		for i, c := range d.Contents {
			if c.File == "" {
				continue
			}
			data, err := os.ReadFile(c.File)
			if err != nil {
				return nil, fmt.Errorf("strategy %q: read %s: %w", d.ID, c.File, err)
			}
			d.Contents[i].Text = string(data)
			if c.Name == "" {
				d.Contents[i].Name = filepath.Base(c.File)
			}
		}
		l.defs[d.ID] = d
		l.order = append(l.order, d.ID)
	}
	return l, nil
}

// Resolve returns the strategy's own settings and content when strategyID is
// known. With only a userID, every configured content block is returned.
func (l *Library) Resolve(_ context.Context, _ string, strategyID, userID string) (*Context, error) {
	if strategyID != "" {
		d, ok := l.defs[strategyID]
		if !ok {
			return nil, nil
		}
		sc := &Context{BaseStrategy: d.BaseStrategy, CustomPrompt: d.CustomPrompt}
		sc.Rules, sc.ContentNames = formatContents(d.Contents)
		return sc, nil
	}

	if userID != "" {
		var all []Content
		for _, id := range l.order {
			all = append(all, l.defs[id].Contents...)
		}
		if len(all) == 0 {
			return nil, nil
		}
		sc := &Context{}
		sc.Rules, sc.ContentNames = formatContents(all)
		return sc, nil
	}

	return nil, nil
}

// Definitions returns the configured strategies in declaration order.
func (l *Library) Definitions() []Definition {
	out := make([]Definition, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.defs[id])
	}
	return out
}

func formatContents(contents []Content) (string, []string) {
	parts := make([]string, 0, len(contents))
	names := make([]string, 0, len(contents))
	for _, c := range contents {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s]\n%s", c.Name, c.Text))
		names = append(names, c.Name)
	}
	return strings.Join(parts, "\n\n---\n\n"), names
}
