package service

import (
	"interview_coach_backend/internal/model"
	"interview_coach_backend/pkg/logger"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	// 内存库下每个连接各有一份数据，收敛到单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.JobRole{},
		&model.BankQuestion{},
		&model.InterviewSession{},
		&model.InterviewQuestion{},
		&model.CodingChallenge{},
		&model.ChallengeTestCase{},
		&model.CodingSubmission{},
	)
	require.NoError(t, err)
	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func seedRole(t *testing.T, db *gorm.DB, name string) *model.JobRole {
	t.Helper()
	role := &model.JobRole{Name: name}
	require.NoError(t, db.Create(role).Error)
	return role
}

func seedBankQuestion(t *testing.T, db *gorm.DB, roleID *string, qType, difficulty, text, ideal string) *model.BankQuestion {
	t.Helper()
	q := &model.BankQuestion{
		JobRoleID:    roleID,
		QuestionType: qType,
		Difficulty:   difficulty,
		QuestionText: text,
		IdealAnswer:  ideal,
		IsActive:     true,
	}
	require.NoError(t, db.Create(q).Error)
	return q
}
