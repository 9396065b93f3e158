package service

import (
	"context"
	"fmt"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// 启发式打分的各成分权重
const (
	weightWordOverlap     = 0.20
	weightKeywordCoverage = 0.35
	weightPhraseOverlap   = 0.15
	weightLength          = 0.15
	weightStructure       = 0.15
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"has": true, "have": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "that": true, "these": true, "those": true,
	"from": true, "they": true, "been": true, "their": true, "there": true,
	"which": true, "would": true, "could": true, "should": true, "about": true,
	"when": true, "where": true, "what": true, "your": true, "into": true,
	"than": true, "then": true, "them": true, "also": true, "more": true,
	"some": true, "such": true, "very": true, "just": true, "like": true,
	"other": true, "each": true, "does": true, "doing": true, "being": true,
}

// HeuristicEvaluator 把候选人答案与题库参考答案做词法比对，完全离线。
// 用于刷题练习模式的即时反馈
type HeuristicEvaluator struct{}

func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{}
}

func (e *HeuristicEvaluator) Evaluate(ctx context.Context, question *model.InterviewQuestion, answer string) (result *model.AnswerEvaluation) {
	// 任何意外都不应打断答题流程，兜底为 50 分的中性评估
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("heuristic evaluation panicked", zap.Any("panic", r))
			result = &model.AnswerEvaluation{
				Score:    50,
				Feedback: "Your answer was recorded, but automatic scoring was unable to analyze it in detail.",
				Metrics:  model.AnswerMetrics{Clarity: 50, Relevance: 50, Completeness: 50},
			}
		}
	}()

	if strings.TrimSpace(answer) == "" {
		return &model.AnswerEvaluation{
			Score:    0,
			Feedback: "No answer provided.",
		}
	}

	ideal := question.IdealAnswer
	answerWords := tokenize(answer)
	idealWords := tokenize(ideal)

	wordScore := jaccard(answerWords, idealWords) * 100

	keywords := topKeywords(idealWords, 20)
	answerSet := toSet(answerWords)
	var matched, missed []string
	for _, kw := range keywords {
		if answerSet[kw] {
			matched = append(matched, kw)
		} else {
			missed = append(missed, kw)
		}
	}
	keywordScore := 0.0
	if len(keywords) > 0 {
		keywordScore = float64(len(matched)) / float64(len(keywords)) * 100
	}
	if len(matched) > 10 {
		matched = matched[:10]
	}
	if len(missed) > 10 {
		missed = missed[:10]
	}

	phraseScore := jaccard(phrases(answerWords), phrases(idealWords)) * 100
	lengthScore := lengthRatioScore(len(answerWords), len(idealWords))
	structureScore := structureScore(answer)

	score := util.RoundScore(
		weightWordOverlap*wordScore +
			weightKeywordCoverage*keywordScore +
			weightPhraseOverlap*phraseScore +
			weightLength*lengthScore +
			weightStructure*structureScore)

	metrics := model.AnswerMetrics{
		Clarity:      util.RoundScore(0.6*structureScore + 0.4*lengthScore),
		Relevance:    util.RoundScore(0.7*keywordScore + 0.3*wordScore),
		Completeness: util.RoundScore(0.5*keywordScore + 0.3*lengthScore + 0.2*phraseScore),
	}

	return &model.AnswerEvaluation{
		Score:           util.ClampScore(score),
		Feedback:        heuristicFeedback(score, missed, question.QuestionType),
		Metrics:         metrics,
		MatchedKeywords: matched,
		MissedKeywords:  missed,
	}
}

// tokenize 小写化、去标点，丢弃长度不超过 2 的词
func tokenize(text string) []string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	var words []string
	for _, w := range strings.Fields(sb.String()) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func jaccard(a, b []string) float64 {
	setA, setB := toSet(a), toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for w := range setA {
		if setB[w] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// topKeywords 参考答案中频率最高的非停用词，最多 limit 个
func topKeywords(words []string, limit int) []string {
	freq := map[string]int{}
	for _, w := range words {
		if !stopWords[w] {
			freq[w]++
		}
	}
	keys := make([]string, 0, len(freq))
	for w := range freq {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// phrases 相邻词组成的 2 词和 3 词短语
func phrases(words []string) []string {
	if len(words) < 2 {
		return nil
	}
	out := make([]string, 0, 2*len(words))
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	for i := 0; i+2 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1]+" "+words[i+2])
	}
	return out
}

// lengthRatioScore 答案长度与参考答案长度之比的得分
func lengthRatioScore(answerLen, idealLen int) float64 {
	if idealLen == 0 {
		return 70
	}
	ratio := float64(answerLen) / float64(idealLen)
	switch {
	case ratio < 0.3:
		return ratio * 100
	case ratio > 2.0:
		return math.Max(40, 100-(ratio-2.0)*30)
	case ratio >= 0.5 && ratio <= 1.5:
		return 100
	default:
		return 70 + (1-math.Abs(1-ratio))*30
	}
}

// structureScore 句子数量代表结构完整度，每句 20 分封顶 100
func structureScore(answer string) float64 {
	parts := strings.FieldsFunc(answer, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := 0
	for _, p := range parts {
		if len(strings.TrimSpace(p)) > 10 {
			sentences++
		}
	}
	return math.Min(100, float64(sentences)*20)
}

func heuristicFeedback(score int, missed []string, questionType string) string {
	fb := basicFeedback(score)
	if len(missed) > 0 {
		fb += fmt.Sprintf(" Consider covering: %s.", strings.Join(missed, ", "))
	}
	if score < 70 {
		switch questionType {
		case model.QuestionBehavioral, model.QuestionHR:
			fb += " Try the STAR structure: describe the Situation, Task, Action and Result."
		case model.QuestionTechnical:
			fb += " Go deeper on the technical details and walk through a concrete example."
		}
	}
	return fb
}
