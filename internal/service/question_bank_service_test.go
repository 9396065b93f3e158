package service

import (
	"context"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionBankSelect_MixedSplit(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), rdb)

	role := seedRole(t, db, "Backend Engineer")
	for i := 0; i < 10; i++ {
		seedBankQuestion(t, db, &role.ID, model.QuestionTechnical, model.DifficultyMedium, "tech question", "ideal")
	}
	for i := 0; i < 10; i++ {
		seedBankQuestion(t, db, nil, model.QuestionHR, model.DifficultyMedium, "hr question", "ideal")
	}

	// MIXED: 60% 技术题向上取整，剩余来自共享池
	qs, err := svc.Select(context.Background(), role.Name, model.QuestionMixed, model.DifficultyMedium, 7)
	require.NoError(t, err)
	require.Len(t, qs, 7)

	tech := 0
	for _, q := range qs {
		if q.QuestionType == model.QuestionTechnical {
			tech++
		}
	}
	assert.Equal(t, 5, tech)
	assert.Equal(t, 2, len(qs)-tech)
}

func TestQuestionBankSelect_ShortfallReturnedAsIs(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), rdb)

	role := seedRole(t, db, "Data Engineer")
	seedBankQuestion(t, db, &role.ID, model.QuestionTechnical, model.DifficultyHard, "only one", "ideal")

	qs, err := svc.Select(context.Background(), role.Name, model.QuestionTechnical, model.DifficultyHard, 10)
	require.NoError(t, err)
	assert.Len(t, qs, 1)
}

func TestQuestionBankSelect_UnknownRoleReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), rdb)

	qs, err := svc.Select(context.Background(), "No Such Role", model.QuestionTechnical, model.DifficultyEasy, 5)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestQuestionBankSelect_EmptyRoleTechnicalReturnsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), newTestRedis(t))

	qs, err := svc.Select(context.Background(), "", model.QuestionTechnical, model.DifficultyEasy, 5)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func TestQuestionBankSelect_PoolCached(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), rdb)

	for i := 0; i < 4; i++ {
		seedBankQuestion(t, db, nil, model.QuestionHR, model.DifficultyEasy, "hr question", "ideal")
	}

	qs, err := svc.Select(context.Background(), "", model.QuestionHR, model.DifficultyEasy, 2)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	// 命中缓存：清空数据库后仍能从 Redis 取到题目池
	require.NoError(t, db.Where("1 = 1").Delete(&model.BankQuestion{}).Error)

	qs, err = svc.Select(context.Background(), "", model.QuestionHR, model.DifficultyEasy, 2)
	require.NoError(t, err)
	assert.Len(t, qs, 2)
}

func TestQuestionBankSelect_MixedShuffled(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), rdb)

	role := seedRole(t, db, "Backend Engineer")
	for i := 0; i < 5; i++ {
		seedBankQuestion(t, db, &role.ID, model.QuestionTechnical, model.DifficultyMedium, "tech question", "ideal")
		seedBankQuestion(t, db, nil, model.QuestionHR, model.DifficultyMedium, "hr question", "ideal")
	}

	// 合并后的题组整体洗牌：多次抽取不应总是技术题开头
	techFirst := 0
	for i := 0; i < 20; i++ {
		qs, err := svc.Select(context.Background(), role.Name, model.QuestionMixed, model.DifficultyMedium, 5)
		require.NoError(t, err)
		require.NotEmpty(t, qs)
		if qs[0].QuestionType == model.QuestionTechnical {
			techFirst++
		}
	}
	assert.Less(t, techFirst, 20)
}

func TestQuestionBankSelect_InactiveExcluded(t *testing.T) {
	db := newTestDB(t)
	rdb := newTestRedis(t)
	svc := NewQuestionBankService(repository.NewBankRepository(db), rdb)

	role := seedRole(t, db, "Backend Engineer")
	active := seedBankQuestion(t, db, &role.ID, model.QuestionTechnical, model.DifficultyEasy, "still listed", "ideal")

	retired := &model.BankQuestion{
		JobRoleID:    &role.ID,
		QuestionType: model.QuestionTechnical,
		Difficulty:   model.DifficultyEasy,
		QuestionText: "retired question",
		IdealAnswer:  "ideal",
		IsActive:     false,
	}
	require.NoError(t, db.Create(retired).Error)

	qs, err := svc.Select(context.Background(), role.Name, model.QuestionTechnical, model.DifficultyEasy, 10)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, active.ID, qs[0].ID)
}

func TestSample_NoDuplicates(t *testing.T) {
	pool := make([]model.BankQuestion, 20)
	for i := range pool {
		pool[i].ID = string(rune('a' + i))
	}

	picked := sample(pool, 10)
	require.Len(t, picked, 10)

	seen := map[string]bool{}
	for _, q := range picked {
		assert.False(t, seen[q.ID])
		seen[q.ID] = true
	}
}
