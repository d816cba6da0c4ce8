package toon

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Level selects how lossy the text compression is. Higher aggressiveness
// means shorter output.
type Level string

const (
	LevelMaximum    Level = "maximum"
	LevelBalanced   Level = "balanced"
	LevelAggressive Level = "aggressive"
)

// Substitution rewrites a common filler phrase to a short token.
type Substitution struct {
	Pattern *regexp.Regexp
	Token   string
}

// Options controls serialization. BotAuthors and Substitutions are
// injectable data; the defaults mirror the curated lists shipped in
// configuration.
type Options struct {
	Level         Level
	MinScore      int
	MaxDepth      int
	ExcludeBots   bool
	BotAuthors    []string
	Substitutions []Substitution
	Now           func() time.Time
}

// DefaultOptions returns the balanced-profile defaults.
func DefaultOptions() Options {
	subs, _ := ParseSubstitutions(DefaultSubstitutionSpecs())
	return Options{
		Level:       LevelBalanced,
		MinScore:    5,
		MaxDepth:    5,
		ExcludeBots: true,
		BotAuthors: []string{
			"AutoModerator",
			"RemindMeBot",
			"SaveVideo",
			"haikusbot",
			"sub_doesnt_exist_bot",
		},
		Substitutions: subs,
		Now:           time.Now,
	}
}

// DefaultSubstitutionSpecs returns the phrase table in its configurable
// "pattern => token" form.
func DefaultSubstitutionSpecs() []string {
	return []string{
		`(?i)in my opinion => imo`,
		`(?i)to be honest => tbh`,
		`(?i)as far as i know => afaik`,
		`(?i)for what it's worth => fwiw`,
		`(?i)not gonna lie => ngl`,
		`(?i)i don't know => idk`,
		`(?i)on the other hand => otoh`,
		`\[deleted\] => ~`,
		`\[removed\] => -`,
		`(?i)edit: => *`,
	}
}

// ParseSubstitutions compiles "pattern => token" pairs as loaded from
// configuration.
func ParseSubstitutions(specs []string) ([]Substitution, error) {
	subs := make([]Substitution, 0, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(spec, "=>", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("substitution %q is not of the form \"pattern => token\"", spec)
		}
		pattern, err := regexp.Compile(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("substitution %q: %w", spec, err)
		}
		subs = append(subs, Substitution{Pattern: pattern, Token: strings.TrimSpace(parts[1])})
	}
	return subs, nil
}

func (o Options) isBot(author string) bool {
	if !o.ExcludeBots {
		return false
	}
	for _, bot := range o.BotAuthors {
		if author == bot {
			return true
		}
	}
	return false
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
