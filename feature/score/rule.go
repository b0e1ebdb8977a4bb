package score

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"score-ledger/core/utils"

	"gopkg.in/yaml.v3"
)

// ErrUnknownRule is returned when a rule version is not present in the rule set.
var ErrUnknownRule = errors.New("unknown rule version")

// Rule is one scoring rule version.
type Rule struct {
	Version      string `json:"version"`
	Mode         int    `json:"mode"`
	OriginPoint  int    `json:"origin_point"`
	ReturnPoint  int    `json:"return_point"`
	RankPoint    []int  `json:"rank_point"`
	DrawSplit    bool   `json:"draw_split"`
	IgnoreFlying bool   `json:"ignore_flying"`
}

// DefaultRule returns the stock rule for four-player (mode 4) or three-player (mode 3) games.
func DefaultRule(mode int) Rule {
	if mode == 3 {
		return Rule{Mode: 3, OriginPoint: 350, ReturnPoint: 400, RankPoint: []int{30, 0, -30}}
	}
	return Rule{Mode: 4, OriginPoint: 250, ReturnPoint: 300, RankPoint: []int{30, 10, -10, -30}}
}

// Validate checks that the rank point table has one entry per seat.
func (r Rule) Validate() error {
	if r.Mode != 3 && r.Mode != 4 {
		return fmt.Errorf("rule %q: mode must be 3 or 4, got %d", r.Version, r.Mode)
	}
	if len(r.RankPoint) != r.Mode {
		return fmt.Errorf("rule %q: rank_point needs %d entries, got %d", r.Version, r.Mode, len(r.RankPoint))
	}
	return nil
}

// RuleSet is the content of the rule file: rule versions plus the member alias table.
type RuleSet struct {
	Active  string
	Rules   map[string]Rule
	Members map[string]string
}

type ruleFile struct {
	Active  string                    `yaml:"active"`
	Rules   map[string]map[string]any `yaml:"rules"`
	Members map[string]string         `yaml:"members"`
}

// LoadRuleSet reads a rule file from disk.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet decodes a YAML rule file. Missing rule keys fall back to the
// defaults of the rule's mode.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var raw ruleFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}

	rs := &RuleSet{Active: raw.Active, Rules: make(map[string]Rule, len(raw.Rules)), Members: raw.Members}
	for version, values := range raw.Rules {
		mode := 4
		if v, ok := values["mode"]; ok {
			mode = utils.ToInt(v)
		}
		rule := DefaultRule(mode)
		rule.Mode = mode
		rule.Version = version
		if v, ok := values["origin_point"]; ok {
			rule.OriginPoint = utils.ToInt(v)
		}
		if v, ok := values["return_point"]; ok {
			rule.ReturnPoint = utils.ToInt(v)
		}
		if v, ok := values["rank_point"]; ok {
			points := utils.ToIntSlice(v)
			if len(points) > rule.Mode {
				points = points[:rule.Mode]
			}
			rule.RankPoint = points
		}
		rule.DrawSplit = utils.ToBool(values["draw_split"])
		rule.IgnoreFlying = utils.ToBool(values["ignore_flying"])

		if err := rule.Validate(); err != nil {
			return nil, err
		}
		rs.Rules[version] = rule
	}
	if rs.Members == nil {
		rs.Members = map[string]string{}
	}
	return rs, nil
}

// NewRuleSet returns a rule set holding only the stock four-player rule under version.
func NewRuleSet(version string) *RuleSet {
	rule := DefaultRule(4)
	rule.Version = version
	return &RuleSet{Active: version, Rules: map[string]Rule{version: rule}, Members: map[string]string{}}
}

// Get returns the rule stored under version.
func (rs *RuleSet) Get(version string) (Rule, error) {
	rule, ok := rs.Rules[version]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRule, version)
	}
	return rule, nil
}

// Versions lists the rule versions in lexical order.
func (rs *RuleSet) Versions() []string {
	out := make([]string, 0, len(rs.Rules))
	for v := range rs.Rules {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// RuleContext carries the active rule and the text conventions used to score postings.
type RuleContext struct {
	Rule        Rule
	Keyword     string
	RemarksWord string
	Names       *Normalizer
}

// NewRuleContext selects the active rule: the configured version, else the rule file's
// active entry, else the only rule in the file.
func NewRuleContext(cfg Config, rs *RuleSet) (*RuleContext, error) {
	version := cfg.RuleVersion
	if version == "" {
		version = rs.Active
	}
	if version == "" && len(rs.Rules) == 1 {
		version = rs.Versions()[0]
	}
	rule, err := rs.Get(version)
	if err != nil {
		return nil, err
	}
	return &RuleContext{
		Rule:        rule,
		Keyword:     cfg.Keyword,
		RemarksWord: cfg.RemarksWord,
		Names:       NewNormalizer(rs.Members),
	}, nil
}

// Score parses text as a score posting and calculates it under the active rule.
// ok is false when text is not a score posting.
func (rc *RuleContext) Score(ts, text, source string) (result *GameResult, ok bool, err error) {
	fields, ok := ParsePosting(text, rc.Keyword)
	if !ok {
		return nil, false, nil
	}
	for i := range fields.Seats {
		fields.Seats[i].Name = rc.Names.Normalize(fields.Seats[i].Name)
	}
	result, err = Calc(fields, rc.Rule)
	if err != nil {
		return nil, true, err
	}
	result.TS = ts
	result.Source = source
	return result, true, nil
}

// Remarks parses a remark posting and normalises the names it mentions.
func (rc *RuleContext) Remarks(text string) []RemarkPair {
	pairs := ParseRemarks(text, rc.RemarksWord)
	for i := range pairs {
		pairs[i].Name = rc.Names.Normalize(pairs[i].Name)
	}
	return pairs
}
