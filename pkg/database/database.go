package database

import (
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	Seed(db)

	return db, nil
}

// Migrate 执行全部表结构迁移，测试环境（sqlite）复用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.JobRole{},
		&model.BankQuestion{},
		&model.InterviewSession{},
		&model.InterviewQuestion{},
		&model.CodingChallenge{},
		&model.ChallengeTestCase{},
		&model.CodingSubmission{},
	)
}

// Seed 空表时写入默认岗位与共享题库
func Seed(db *gorm.DB) {
	var roleCount int64
	db.Model(&model.JobRole{}).Count(&roleCount)
	if roleCount == 0 {
		defaultRoles := []model.JobRole{
			{Name: "Backend Engineer", Description: "服务端开发岗位"},
			{Name: "Frontend Engineer", Description: "前端开发岗位"},
			{Name: "Data Engineer", Description: "数据开发岗位"},
		}
		for _, r := range defaultRoles {
			db.Create(&r)
		}
	}

	// 共享池：不绑定岗位的 HR/行为面通用题
	var qCount int64
	db.Model(&model.BankQuestion{}).Where("job_role_id IS NULL").Count(&qCount)
	if qCount == 0 {
		shared := []model.BankQuestion{
			{QuestionType: model.QuestionHR, Difficulty: model.DifficultyEasy, Category: "general", IsActive: true,
				QuestionText: "Tell me about yourself and your background.",
				IdealAnswer:  "A concise narrative covering education, key roles, core skills and what motivates the candidate, ending with why this position fits."},
			{QuestionType: model.QuestionHR, Difficulty: model.DifficultyMedium, Category: "motivation", IsActive: true,
				QuestionText: "Why do you want to work for this company?",
				IdealAnswer:  "Specific knowledge of the company's products and culture, connected to the candidate's own goals and strengths."},
			{QuestionType: model.QuestionBehavioral, Difficulty: model.DifficultyMedium, Category: "teamwork", IsActive: true,
				QuestionText: "Describe a time you had a conflict with a teammate and how you resolved it.",
				IdealAnswer:  "A STAR-structured story naming the situation, the disagreement, the concrete steps taken to resolve it and the measurable outcome."},
			{QuestionType: model.QuestionBehavioral, Difficulty: model.DifficultyHard, Category: "resilience", IsActive: true,
				QuestionText: "Tell me about a project that failed. What did you learn?",
				IdealAnswer:  "Honest ownership of the failure, root cause analysis, and concrete changes applied to later projects."},
		}
		for _, q := range shared {
			db.Create(&q)
		}
	}
}
