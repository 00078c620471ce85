// Package rules cleans up recognizer output before intent classification.
// Rules are line-oriented: "from => to" replaces whole words or phrases, and
// "s/pattern/replacement/flags" applies a regular expression.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Builtin corrects recognizer spellings of the advisor vocabulary. It runs
// before any rules loaded from a file.
const Builtin = `
appt => appointment
mtg => meeting
withdrawl => withdrawal
s/\billustrate\b/illustration/g
s/\$(\d+)\s*k\b/$$${1},000/g
s/\s+([,.?!])/$1/g
`

type compiledRule interface {
	Apply(input string) (output string, changed bool)
}

// RuleParser parses one line into a compiled rule.
type RuleParser interface {
	CanParse(line string) bool
	Parse(line string) (compiledRule, error)
}

// Engine applies the builtin substitutions plus any loaded from a rules file.
type Engine struct {
	rules     []compiledRule
	loopLimit int
}

// NewEngine loads and compiles rules from a file using built-in parsers.
// A missing or empty path leaves only the builtin rules.
func NewEngine(path string, loopLimit int) (*Engine, error) {
	return NewEngineWithParsers(path, loopLimit, defaultRuleParsers())
}

// NewEngineWithParsers allows parser extension without engine changes.
func NewEngineWithParsers(path string, loopLimit int, parsers []RuleParser) (*Engine, error) {
	if loopLimit <= 0 {
		loopLimit = 30
	}
	if len(parsers) == 0 {
		parsers = defaultRuleParsers()
	}

	builtin, err := parseRules(Builtin, parsers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse builtin rules: %w", err)
	}
	engine := &Engine{rules: builtin, loopLimit: loopLimit}

	if strings.TrimSpace(path) == "" {
		return engine, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return engine, nil
		}
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}

	loaded, err := parseRules(string(contents), parsers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}
	engine.rules = append(engine.rules, loaded...)
	return engine, nil
}

// Len reports how many rules are active.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Apply rewrites text until a full pass changes nothing or the loop limit is
// hit, then collapses runs of whitespace.
func (e *Engine) Apply(text string) (string, error) {
	result := text
	for pass := 0; pass < e.loopLimit; pass++ {
		if !e.pass(&result) {
			break
		}
	}
	return strings.Join(strings.Fields(result), " "), nil
}

func (e *Engine) pass(text *string) bool {
	changed := false
	for _, rule := range e.rules {
		if next, ok := rule.Apply(*text); ok {
			*text = next
			changed = true
		}
	}
	return changed
}

func parseRules(contents string, parsers []RuleParser) ([]compiledRule, error) {
	lines := strings.Split(contents, "\n")
	rules := make([]compiledRule, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed := false
		for _, parser := range parsers {
			if !parser.CanParse(line) {
				continue
			}
			rule, err := parser.Parse(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", index+1, err)
			}
			rules = append(rules, rule)
			parsed = true
			break
		}

		if !parsed {
			return nil, fmt.Errorf("line %d: unsupported rule format", index+1)
		}
	}

	return rules, nil
}

func defaultRuleParsers() []RuleParser {
	return []RuleParser{regexRuleParser{}, literalRuleParser{}}
}

type literalRuleParser struct{}

func (literalRuleParser) CanParse(line string) bool {
	return strings.Contains(line, "=>")
}

func (literalRuleParser) Parse(line string) (compiledRule, error) {
	return parseLiteralRule(line)
}

type regexRuleParser struct{}

func (regexRuleParser) CanParse(line string) bool {
	return looksLikeRegexRule(line)
}

func (regexRuleParser) Parse(line string) (compiledRule, error) {
	return parseRegexRule(line)
}

type literalRule struct {
	replacement string
	re          *regexp.Regexp
}

func parseLiteralRule(line string) (compiledRule, error) {
	parts := strings.SplitN(line, "=>", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid literal rule")
	}
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	if from == "" {
		return nil, errors.New("literal rule source cannot be empty")
	}

	// whole words only, so "appt" never fires inside a longer word
	pattern := regexp.QuoteMeta(from)
	if isWordByte(from[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(from[len(from)-1]) {
		pattern += `\b`
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid literal source: %w", err)
	}

	return literalRule{replacement: to, re: re}, nil
}

func (r literalRule) Apply(input string) (string, bool) {
	output := r.re.ReplaceAllString(input, r.replacement)
	return output, output != input
}

type regexRule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

// parseRegexRule reads sed-style "s/pattern/replacement/flags". Matching is
// case-insensitive unless the pattern says otherwise; without g only the
// first match is replaced.
func parseRegexRule(line string) (compiledRule, error) {
	if len(line) < 2 || isAlphaNumericOrSpace(line[1]) {
		return nil, errors.New("regex delimiter must be non-alphanumeric")
	}
	fields, rest, err := splitDelimited(line[2:], line[1], 2)
	if err != nil {
		return nil, fmt.Errorf("invalid regex rule: %w", err)
	}

	modes := "i"
	global := false
	for _, flag := range strings.TrimSpace(rest) {
		switch flag {
		case 'g':
			global = true
		case 'i':
		case 'm', 's':
			modes += string(flag)
		case ' ':
		default:
			return nil, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}

	re, err := regexp.Compile("(?" + modes + ")" + fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return regexRule{re: re, replacement: fields[1], global: global}, nil
}

func (r regexRule) Apply(input string) (string, bool) {
	if r.global {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	match := r.re.FindStringSubmatchIndex(input)
	if match == nil {
		return input, false
	}
	expanded := r.re.ExpandString(nil, r.replacement, input, match)
	output := input[:match[0]] + string(expanded) + input[match[1]:]
	return output, output != input
}

// splitDelimited cuts n delim-terminated fields off s. Backslash escapes are
// kept verbatim so the regexp package still sees them.
func splitDelimited(s string, delim byte, n int) ([]string, string, error) {
	fields := make([]string, 0, n)
	start := 0
	for i := 0; i < len(s) && len(fields) < n; i++ {
		switch s[i] {
		case '\\':
			i++
		case delim:
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	if len(fields) < n {
		return nil, "", errors.New("unterminated expression")
	}
	return fields, s[start:], nil
}

func isAlphaNumericOrSpace(char byte) bool {
	return isWordByte(char) && char != '_' || char == ' ' || char == '\t'
}

func isWordByte(char byte) bool {
	return char == '_' ||
		(char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9')
}

func looksLikeRegexRule(line string) bool {
	return len(line) > 1 && line[0] == 's' && !isAlphaNumericOrSpace(line[1])
}
