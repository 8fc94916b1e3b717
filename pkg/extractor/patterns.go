package extractor

import (
	"fmt"
	"os"
	"regexp"

	"github.com/openregulatory/regkb/pkg/types"
	"gopkg.in/yaml.v3"
)

// Pattern locates rule-number markers in page text. The marker expression
// must capture exactly one group: the dotted rule number. The rule body is
// the text between the end of one marker and the start of the next.
type Pattern struct {
	// Name identifies the pattern in logs.
	Name string
	// Marker matches the start of a rule and captures its number.
	Marker *regexp.Regexp
}

// Built-in pattern sets for the two known corpora. The GFR text numbers
// rules either as bare dotted numbers or as "Rule N - ..."; the
// procurement manual uses three-component numbers and "Section N: ..."
// headings.
var (
	gfrPatterns = []Pattern{
		{Name: "gfr-dotted", Marker: regexp.MustCompile(`(\d+(?:\.\d+)*)\s+`)},
		{Name: "gfr-rule-heading", Marker: regexp.MustCompile(`Rule\s+(\d+)\s*-\s*`)},
	}
	pmPatterns = []Pattern{
		{Name: "pm-dotted", Marker: regexp.MustCompile(`(\d+\.\d+\.\d+)\s+`)},
		{Name: "pm-section-heading", Marker: regexp.MustCompile(`Section\s+(\d+)\s*:\s*`)},
	}
)

// PatternsForSource selects the built-in pattern set for a source corpus.
func PatternsForSource(source types.Source) []Pattern {
	if source == types.SourceGFR {
		return gfrPatterns
	}
	return pmPatterns
}

// patternSetFile is the YAML shape for custom pattern sets:
//
//	gfr:
//	  - name: dotted
//	    marker: '(\d+(?:\.\d+)*)\s+'
//	pm:
//	  - name: section
//	    marker: 'Section\s+(\d+)\s*:\s*'
type patternSetFile map[string][]struct {
	Name   string `yaml:"name"`
	Marker string `yaml:"marker"`
}

// LoadPatternSets reads custom pattern sets from a YAML file, keyed by
// lowercase corpus tag ("gfr", "pm"). Every marker must compile and
// capture exactly one group.
func LoadPatternSets(path string) (map[string][]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	var file patternSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file: %w", err)
	}

	sets := make(map[string][]Pattern, len(file))
	for key, entries := range file {
		patterns := make([]Pattern, 0, len(entries))
		for _, entry := range entries {
			marker, err := regexp.Compile(entry.Marker)
			if err != nil {
				return nil, fmt.Errorf("pattern %q in set %q: %w", entry.Name, key, err)
			}
			if marker.NumSubexp() != 1 {
				return nil, fmt.Errorf("pattern %q in set %q: marker must capture exactly one group, has %d",
					entry.Name, key, marker.NumSubexp())
			}
			patterns = append(patterns, Pattern{Name: entry.Name, Marker: marker})
		}
		sets[key] = patterns
	}
	return sets, nil
}
