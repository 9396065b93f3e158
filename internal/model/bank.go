package model

// swagger:model JobRole
type JobRole struct {
	UUIDBase
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (JobRole) TableName() string {
	return "job_roles"
}

// BankQuestion 题库题目。JobRoleID 为空表示共享池（HR/行为面通用题）
// swagger:model BankQuestion
type BankQuestion struct {
	UUIDBase
	JobRoleID    *string `gorm:"index;type:varchar(36)" json:"jobRoleId,omitempty"`
	QuestionType string  `gorm:"size:30;index;not null" json:"questionType"`
	Difficulty   string  `gorm:"size:20;index;not null" json:"difficulty"`
	Category     string  `gorm:"size:50;index" json:"category,omitempty"`
	QuestionText string  `gorm:"type:text;not null" json:"questionText"`
	IdealAnswer  string  `gorm:"type:text" json:"idealAnswer,omitempty"`
	// 下架的题目不再进入选题池
	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (BankQuestion) TableName() string {
	return "bank_questions"
}
