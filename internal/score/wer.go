// Package score measures transcript quality against a reference text.
package score

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result holds word error rate details.
type Result struct {
	WER           float64 // (S + I + D) / RefWords
	Substitutions int
	Insertions    int
	Deletions     int
	RefWords      int
}

func (r Result) String() string {
	return fmt.Sprintf("WER %.2f%% (sub %d, ins %d, del %d, ref %d words)",
		r.WER*100, r.Substitutions, r.Insertions, r.Deletions, r.RefWords)
}

// Options control text normalization before comparison.
type Options struct {
	// FoldAccents compares "canción" and "cancion" as equal.
	FoldAccents bool
}

// WER compares hypothesis against reference. Both are lowercased, stripped
// of punctuation (including ¿ and ¡) and split on whitespace.
func WER(reference, hypothesis string, opts Options) Result {
	ref := words(reference, opts)
	hyp := words(hypothesis, opts)
	if len(ref) == 0 {
		return Result{}
	}

	subs, ins, dels := align(ref, hyp)
	return Result{
		WER:           float64(subs+ins+dels) / float64(len(ref)),
		Substitutions: subs,
		Insertions:    ins,
		Deletions:     dels,
		RefWords:      len(ref),
	}
}

// WERFiles reads both files and compares their contents.
func WERFiles(referencePath, hypothesisPath string, opts Options) (Result, error) {
	ref, err := os.ReadFile(referencePath)
	if err != nil {
		return Result{}, fmt.Errorf("reading reference: %w", err)
	}
	hyp, err := os.ReadFile(hypothesisPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading hypothesis: %w", err)
	}
	return WER(string(ref), string(hyp), opts), nil
}

// align runs a Levenshtein alignment over words and counts each edit kind
// on one minimal path.
func align(ref, hyp []string) (subs, ins, dels int) {
	n, m := len(ref), len(hyp)
	cost := make([][]int, n+1)
	for i := range cost {
		cost[i] = make([]int, m+1)
		cost[i][0] = i
	}
	for j := 1; j <= m; j++ {
		cost[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if ref[i-1] == hyp[j-1] {
				cost[i][j] = cost[i-1][j-1]
				continue
			}
			cost[i][j] = 1 + min(cost[i-1][j-1], cost[i-1][j], cost[i][j-1])
		}
	}

	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1]:
			i, j = i-1, j-1
		case i > 0 && j > 0 && cost[i][j] == cost[i-1][j-1]+1:
			subs++
			i, j = i-1, j-1
		case i > 0 && cost[i][j] == cost[i-1][j]+1:
			dels++
			i--
		default:
			ins++
			j--
		}
	}
	return subs, ins, dels
}

func words(s string, opts Options) []string {
	s = strings.ToLower(s)
	if opts.FoldAccents {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if folded, _, err := transform.String(t, s); err == nil {
			s = folded
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
	return strings.Fields(s)
}
