package model

import (
	"encoding/json"
	"time"
)

// 会话模式
const (
	ModeMock     = "MOCK"
	ModePractice = "PRACTICE"
)

// 会话状态（单向推进：PENDING -> IN_PROGRESS -> COMPLETED）
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// 难度
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// 题目类型
const (
	QuestionTechnical  = "TECHNICAL"
	QuestionBehavioral = "BEHAVIORAL"
	QuestionHR         = "HR"
	QuestionMixed      = "MIXED"
)

// FollowUpSuffix 追问题目的类型后缀，带该后缀的题目不会再次派生追问
const FollowUpSuffix = "-follow-up"

// swagger:model InterviewSession
type InterviewSession struct {
	UUIDBase
	UserID       string `gorm:"index;type:varchar(36);not null" json:"userId"`
	TargetRole   string `gorm:"size:100" json:"targetRole,omitempty"`
	Mode         string `gorm:"size:20;not null" json:"mode"`
	QuestionType string `gorm:"size:30;not null" json:"questionType"`
	Difficulty   string `gorm:"size:20;not null" json:"difficulty"`
	Status       string `gorm:"size:20;default:'PENDING'" json:"status"`
	OverallScore *int   `json:"overallScore,omitempty"`
	// Feedback 会话级总结反馈，结束面试时生成
	Feedback    string     `gorm:"type:text" json:"feedback,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// LockVersion 通过行级自增实现同会话操作的互斥串行化
	LockVersion int                 `gorm:"default:0" json:"-"`
	Questions   []InterviewQuestion `gorm:"foreignKey:SessionID" json:"questions,omitempty"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// swagger:model InterviewQuestion
type InterviewQuestion struct {
	UUIDBase
	SessionID string `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	// BankQuestionID 题库来源标记，生成题为空
	BankQuestionID *string         `gorm:"index;type:varchar(36)" json:"bankQuestionId,omitempty"`
	QuestionText   string          `gorm:"type:text;not null" json:"questionText"`
	QuestionType   string          `gorm:"size:50;not null" json:"questionType"`
	OrderIndex     int             `gorm:"not null" json:"orderIndex"`
	IdealAnswer    string          `gorm:"type:text" json:"-"`
	Answer         *string         `gorm:"type:text" json:"answer,omitempty"`
	Score          *int            `json:"score,omitempty"`
	Feedback       string          `gorm:"type:text" json:"feedback,omitempty"`
	Metrics        json.RawMessage `gorm:"type:json" json:"metrics,omitempty"`
	// Evaluation 完整的单题评估记录，供会话级报告复用
	Evaluation json.RawMessage `gorm:"type:json" json:"evaluation,omitempty"`
	AnsweredAt *time.Time      `json:"answeredAt,omitempty"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

// Answered 只要提交过答案就视为已作答（空串答案也算作答并计 0 分）
func (q *InterviewQuestion) Answered() bool {
	return q.Answer != nil
}

// AnswerMetrics 单题评估的维度细分
type AnswerMetrics struct {
	Clarity      int `json:"clarity"`
	Relevance    int `json:"relevance"`
	Completeness int `json:"completeness"`
}

// AnswerEvaluation 单题评估结果
type AnswerEvaluation struct {
	Score            int           `json:"score"`
	Feedback         string        `json:"feedback"`
	Metrics          AnswerMetrics `json:"metrics"`
	MatchedKeywords  []string      `json:"matchedKeywords,omitempty"`
	MissedKeywords   []string      `json:"missedKeywords,omitempty"`
	ImprovedAnswer   string        `json:"improvedAnswer,omitempty"`
	Suggestions      []string      `json:"suggestions,omitempty"`
	EvidenceSnippets []string      `json:"evidenceSnippets,omitempty"`
	RiskFlags        []string      `json:"riskFlags,omitempty"`
	BiasFlags        []string      `json:"biasFlags,omitempty"`
	NeedsFollowUp    bool          `json:"needsFollowUp"`
	FollowUpText     string        `json:"followUpText,omitempty"`
}
