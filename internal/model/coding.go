package model

import "encoding/json"

// 提交判定结果
const (
	VerdictAccepted         = "ACCEPTED"
	VerdictWrongAnswer      = "WRONG_ANSWER"
	VerdictRuntimeError     = "RUNTIME_ERROR"
	VerdictCompilationError = "COMPILATION_ERROR"
)

// swagger:model CodingChallenge
type CodingChallenge struct {
	UUIDBase
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Difficulty  string   `gorm:"size:20;index" json:"difficulty"`
	Category    string   `gorm:"size:50;index" json:"category"`
	Tags        []string `gorm:"serializer:json" json:"tags,omitempty"`
	// SupportedLanguages 为空时沿用沙箱的全局语言表
	SupportedLanguages []string            `gorm:"serializer:json" json:"supportedLanguages,omitempty"`
	StarterCode        json.RawMessage     `gorm:"type:json" json:"starterCode,omitempty"`
	TimeLimitMs        int                 `gorm:"default:0" json:"timeLimitMs,omitempty"`
	MemoryLimitKb      int                 `gorm:"default:0" json:"memoryLimitKb,omitempty"`
	IsActive           bool                `gorm:"default:true" json:"isActive"`
	TestCases          []ChallengeTestCase `gorm:"foreignKey:ChallengeID" json:"testCases,omitempty"`
}

func (CodingChallenge) TableName() string {
	return "coding_challenges"
}

// swagger:model ChallengeTestCase
type ChallengeTestCase struct {
	UUIDBase
	ChallengeID    string `gorm:"index;type:varchar(36);not null" json:"challengeId"`
	Input          string `gorm:"type:text" json:"input"`
	ExpectedOutput string `gorm:"type:text" json:"expectedOutput"`
	IsHidden       bool   `gorm:"default:false" json:"isHidden"`
	OrderIndex     int    `gorm:"default:0" json:"orderIndex"`
}

func (ChallengeTestCase) TableName() string {
	return "challenge_test_cases"
}

// CodingSubmission 一次判题记录，写入后不可变更
// swagger:model CodingSubmission
type CodingSubmission struct {
	UUIDBase
	UserID      string          `gorm:"index;type:varchar(36);not null" json:"userId"`
	ChallengeID string          `gorm:"index;type:varchar(36);not null" json:"challengeId"`
	Language    string `gorm:"size:30;not null" json:"language"`
	Code        string `gorm:"type:text;not null" json:"code"`
	Status      string `gorm:"size:30;not null" json:"status"`
	Score       int    `gorm:"default:0" json:"score"`
	PassedTests int    `gorm:"default:0" json:"passedTests"`
	TotalTests  int    `gorm:"default:0" json:"totalTests"`
	// ExecutionTimeMs 全部用例的累计执行耗时
	ExecutionTimeMs int64           `gorm:"default:0" json:"executionTimeMs"`
	Results         json.RawMessage `gorm:"type:json" json:"results,omitempty"`
	AIAnalysis      json.RawMessage `gorm:"type:json" json:"aiAnalysis,omitempty"`
}

func (CodingSubmission) TableName() string {
	return "coding_submissions"
}

// TestCaseResult 单个用例的执行结果（隐藏用例对外脱敏）
type TestCaseResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput"`
	Passed         bool   `json:"passed"`
	Error          string `json:"error,omitempty"`
}

// CodeAnalysis 模型对代码质量的分析
type CodeAnalysis struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions,omitempty"`
}
