package core

import "strings"

// Category classifies an issue by the keyword set that matched it.
type Category string

const (
	CategoryError Category = "error"
	CategoryCrash Category = "crash"
	CategoryFail  Category = "fail"
)

// Keyword is a named set of trouble terms to look for in log lines.
// Matching is case-insensitive substring matching.
type Keyword struct {
	Category Category `yaml:"category" json:"category"`
	Terms    []string `yaml:"terms"    json:"terms"`
}

// DefaultKeywords returns the stock keyword sets. Order matters: the first
// set whose term appears in a line decides the issue's category.
func DefaultKeywords() []Keyword {
	return []Keyword{
		{Category: CategoryError, Terms: []string{"error"}},
		{Category: CategoryCrash, Terms: []string{"crash", "segmentation fault"}},
		{Category: CategoryFail, Terms: []string{"fail"}},
	}
}

// Classify returns the category of the first keyword set with a term
// contained in line, or "" if nothing matches.
func Classify(line string, keywords []Keyword) (Category, bool) {
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		for _, term := range kw.Terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return kw.Category, true
			}
		}
	}
	return "", false
}
