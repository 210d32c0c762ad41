package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
// It needs no model and backs the offline extractive generation backend.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: Stopwords()}
}

// Sentences splits text into trimmed sentences. Text without terminal
// punctuation is returned as a single sentence.
func Sentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	// trailing fragment without punctuation
	if rest := strings.TrimSpace(text[end:]); rest != "" && wordRe.MatchString(rest) {
		out = append(out, rest)
	}
	return out
}

// Words returns the lowercased words of text.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// SummarizeWords keeps the best ranked sentences whose combined length stays
// within maxWords. The top sentence is always kept, cut to maxWords if needed.
func (s *FrequencySummarizer) SummarizeWords(text string, maxWords int) string {
	sentences := Sentences(text)
	if len(sentences) == 0 || maxWords <= 0 {
		return ""
	}
	order := s.rank(sentences)
	var selected []int
	used := 0
	for _, idx := range order {
		n := len(strings.Fields(sentences[idx]))
		if used+n > maxWords {
			continue
		}
		selected = append(selected, idx)
		used += n
	}
	if len(selected) == 0 {
		fields := strings.Fields(sentences[order[0]])
		return strings.Join(fields[:min(maxWords, len(fields))], " ")
	}
	return joinInOrder(sentences, selected)
}

// rank returns sentence indexes, best first.
func (s *FrequencySummarizer) rank(sentences []string) []int {
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range Words(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := Words(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		// normalize by length to avoid bias towards long sentences
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = pair{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	out := make([]int, len(scores))
	for i, p := range scores {
		out[i] = p.idx
	}
	return out
}

func joinInOrder(sentences []string, selected []int) string {
	idx := append([]int(nil), selected...)
	sort.Ints(idx)
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = sentences[j]
	}
	return strings.Join(out, " ")
}

// Stopwords returns the English stopword set used for ranking.
func Stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "who", "whom", "which", "when", "where", "why", "how", "does", "do", "did", "has", "have", "had", "he", "she", "his", "her", "they", "their", "its",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
