// Package content holds the daily declarations and prayer topics of a
// challenge. A bundle is embedded; deployments may override it from local
// or object storage.
package content

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/storage"
)

//go:embed challenge.yaml
var defaultBundle []byte

var ErrInvalid = errors.New("invalid content bundle")

// Content is one challenge's text. The number of declarations fixes the
// number of days.
type Content struct {
	Title               string         `yaml:"title"`
	Tagline             string         `yaml:"tagline"`
	Declarations        []string       `yaml:"declarations"`
	PrayerTopics        []string       `yaml:"prayer_topics"`
	SpecialPrayerTopics map[int]string `yaml:"special_prayer_topics"`
}

// Default returns the embedded bundle.
func Default() *Content {
	c, err := Parse(defaultBundle)
	if err != nil {
		panic(fmt.Sprintf("embedded content bundle: %v", err))
	}
	return c
}

// Load reads the bundle named key from store.
func Load(ctx context.Context, store storage.Storage, key string) (*Content, error) {
	data, err := store.ReadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading content %q: %w", key, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bundle.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.Declarations) == 0 {
		return nil, fmt.Errorf("%w: no declarations", ErrInvalid)
	}
	if len(c.PrayerTopics) == 0 {
		return nil, fmt.Errorf("%w: no prayer topics", ErrInvalid)
	}
	for day := range c.SpecialPrayerTopics {
		if day < 1 || day > len(c.Declarations) {
			return nil, fmt.Errorf("%w: special prayer topic for day %d outside 1..%d", ErrInvalid, day, len(c.Declarations))
		}
	}
	return &c, nil
}

// Days is the length of the challenge.
func (c *Content) Days() int {
	return len(c.Declarations)
}

// Declaration returns the statement for day (1-based), or "" out of range.
func (c *Content) Declaration(day int) string {
	if day < 1 || day > len(c.Declarations) {
		return ""
	}
	return c.Declarations[day-1]
}

// PrayerTopic returns the day's special topic if one is set, otherwise the
// rotating topic.
func (c *Content) PrayerTopic(day int) string {
	if day < 1 || day > len(c.Declarations) {
		return ""
	}
	if topic, ok := c.SpecialPrayerTopics[day]; ok {
		return topic
	}
	return c.PrayerTopics[(day-1)%len(c.PrayerTopics)]
}
