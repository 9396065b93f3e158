package model

// 录用建议
const (
	RecommendStrongHire = "STRONG_HIRE"
	RecommendHire       = "HIRE"
	RecommendMaybe      = "MAYBE"
	RecommendNoHire     = "NO_HIRE"
)

// DimensionScores 四个评估维度的得分（0-100）
type DimensionScores struct {
	Technical      int `json:"technical"`
	Communication  int `json:"communication"`
	ProblemSolving int `json:"problemSolving"`
	CulturalFit    int `json:"culturalFit"`
}

// DimensionWeights 维度权重，总和为 100
type DimensionWeights struct {
	Technical      int `json:"technical"`
	Communication  int `json:"communication"`
	ProblemSolving int `json:"problemSolving"`
	CulturalFit    int `json:"culturalFit"`
}

// Sum 权重合计，合法的权重组必须等于 100
func (w DimensionWeights) Sum() int {
	return w.Technical + w.Communication + w.ProblemSolving + w.CulturalFit
}

// QuestionEvaluation 报告中的单题评估记录
type QuestionEvaluation struct {
	QuestionID       string   `json:"questionId"`
	QuestionText     string   `json:"questionText"`
	Score            int      `json:"score"`
	Feedback         string   `json:"feedback,omitempty"`
	CoveredKeyPoints []string `json:"coveredKeyPoints,omitempty"`
	MissedKeyPoints  []string `json:"missedKeyPoints,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
	EvidenceSnippets []string `json:"evidenceSnippets,omitempty"`
	RiskFlags        []string `json:"riskFlags,omitempty"`
	BiasFlags        []string `json:"biasFlags,omitempty"`
}

// SkillAssessment 深度洞察中的单项技能评估
type SkillAssessment struct {
	Skill string `json:"skill"`
	Score int    `json:"score"`
}

// DeepInsights 模型生成的整体洞察，模型不可用时回退为确定性模板
type DeepInsights struct {
	Summary    string            `json:"summary"`
	Strengths  []string          `json:"strengths,omitempty"`
	Weaknesses []string          `json:"weaknesses,omitempty"`
	Confidence int               `json:"confidence"`
	Skills     []SkillAssessment `json:"skills,omitempty"`
}

// EvaluationReport 会话级聚合评估报告
type EvaluationReport struct {
	SessionID      string               `json:"sessionId"`
	Dimensions     DimensionScores      `json:"dimensions"`
	Weights        DimensionWeights     `json:"weights"`
	OverallScore   int                  `json:"overallScore"`
	Recommendation string               `json:"recommendation"`
	Insights       DeepInsights         `json:"insights"`
	Questions      []QuestionEvaluation `json:"questions,omitempty"`
	AnsweredCount  int                  `json:"answeredCount"`
	QuestionCount  int                  `json:"questionCount"`
}
