package service

import (
	"context"
	"encoding/json"
	"fmt"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/repository"
	"interview_coach_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUser = "user-1"

func newInterviewService(t *testing.T, db *gorm.DB, ai *AIService) *InterviewService {
	t.Helper()
	if ai == nil {
		ai = NewAIService(config.AIConfig{})
	}
	bank := NewQuestionBankService(repository.NewBankRepository(db), newTestRedis(t))
	return NewInterviewService(repository.NewSessionRepository(db), bank, ai)
}

func seedPracticePool(t *testing.T, db *gorm.DB, roleID *string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		seedBankQuestion(t, db, roleID, model.QuestionTechnical, model.DifficultyEasy,
			fmt.Sprintf("Explain concept %d in depth.", i),
			"The concept combines caching indexing and sharding to keep latency low while data volume grows over time.")
	}
}

func TestPracticeSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, err := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole:   role.Name,
		Mode:         model.ModePractice,
		QuestionType: model.QuestionTechnical,
		Difficulty:   model.DifficultyEasy,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, session.Status)
	assert.Empty(t, session.Questions)

	// EASY 难度 5 道题，序号稠密
	session, err = svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, session.Status)
	require.Len(t, session.Questions, 5)
	for i, q := range session.Questions {
		assert.Equal(t, i, q.OrderIndex)
	}

	first := session.Questions[0]
	result, err := svc.SubmitAnswer(context.Background(), session.ID, first.ID, testUser,
		"The concept combines caching indexing and sharding. It keeps latency low while data volume grows over time.")
	require.NoError(t, err)
	assert.Greater(t, result.Evaluation.Score, 50)
	require.NotNil(t, result.NextQuestion)
	assert.Equal(t, 1, result.NextQuestion.OrderIndex)

	// 空答案也算作答，计 0 分
	second := session.Questions[1]
	result, err = svc.SubmitAnswer(context.Background(), session.ID, second.ID, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Evaluation.Score)

	completed, err := svc.CompleteSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)
	require.NotNil(t, completed.OverallScore)
	require.NotNil(t, completed.CompletedAt)
	assert.Contains(t, completed.Feedback, "Practice Session Summary")

	// 总分为已作答题目分数的均值
	var sum, answered int
	for _, q := range completed.Questions {
		if q.Answered() && q.Score != nil {
			sum += *q.Score
			answered++
		}
	}
	assert.Equal(t, 2, answered)
	assert.Equal(t, util.RoundScore(float64(sum)/float64(answered)), *completed.OverallScore)

	// 结束是幂等操作：重复调用按当前答题状态重算，不报错
	again, err := svc.CompleteSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, again.Status)
	assert.Equal(t, *completed.OverallScore, *again.OverallScore)

	// 已结束的会话不能再启动
	_, err = svc.StartSession(context.Background(), session.ID, testUser)
	assert.ErrorIs(t, err, util.ErrInvalidSessionState)
}

func TestSubmitAnswerBeforeStartRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	session, err := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionHR, Difficulty: model.DifficultyEasy,
	})
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), session.ID, "whatever", testUser, "answer")
	assert.ErrorIs(t, err, util.ErrInvalidSessionState)
}

func TestReAnswerOverwrites(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModePractice,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)

	q := session.Questions[0]
	_, err = svc.SubmitAnswer(context.Background(), session.ID, q.ID, testUser, "first try")
	require.NoError(t, err)

	better := "The concept combines caching indexing and sharding to keep latency low while data volume grows over time."
	result, err := svc.SubmitAnswer(context.Background(), session.ID, q.ID, testUser, better)
	require.NoError(t, err)

	stored, err := svc.GetSession(session.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, better, *stored.Questions[0].Answer)
	assert.Equal(t, result.Evaluation.Score, *stored.Questions[0].Score)
}

func TestPracticeRequiresMinimumPool(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 2)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModePractice,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	_, err := svc.StartSession(context.Background(), session.ID, testUser)
	assert.ErrorIs(t, err, util.ErrInsufficientBankQuestions)
}

func TestMockFallsBackToGeneratedQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	// 题库为空：模拟面试丢弃题库结果，整组使用生成题（此处为离线兜底题组）
	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionBehavioral, Difficulty: model.DifficultyMedium,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)
	require.Len(t, session.Questions, 7)

	// 模型未配置：非空答案回退 70 分
	result, err := svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, testUser,
		"I once led a migration project under a tight deadline.")
	require.NoError(t, err)
	assert.Equal(t, 70, result.Evaluation.Score)

	// 空答案固定 0 分
	result, err = svc.SubmitAnswer(context.Background(), session.ID, session.Questions[1].ID, testUser, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Evaluation.Score)
}

func TestOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionHR, Difficulty: model.DifficultyEasy,
	})

	_, err := svc.GetSession(session.ID, "someone-else")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.GetSession("missing-id", testUser)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

// evalStubServer 模拟 chat/completions：出题请求返回题组，判分请求返回带追问的评估
func evalStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)

		content := `{"score": 82, "feedback": "Solid answer.", ` +
			`"metrics": {"clarity": 80, "relevance": 85, "completeness": 78}, ` +
			`"needsFollowUp": true, "followUpText": "What trade-offs did you consider?"}`

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestFollowUpInsertedWithDenseOrder(t *testing.T) {
	db := newTestDB(t)
	srv := evalStubServer(t)
	defer srv.Close()

	ai := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	svc := newInterviewService(t, db, ai)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModeMock,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)
	require.Len(t, session.Questions, 5)

	target := session.Questions[1]
	result, err := svc.SubmitAnswer(context.Background(), session.ID, target.ID, testUser, "We used sharding.")
	require.NoError(t, err)
	assert.Equal(t, 82, result.Evaluation.Score)

	// 追问插入在当前题之后，其余题目整体后移，序号保持稠密
	updated, err := svc.GetSession(session.ID, testUser)
	require.NoError(t, err)
	require.Len(t, updated.Questions, 6)
	for i, q := range updated.Questions {
		assert.Equal(t, i, q.OrderIndex)
	}
	followUp := updated.Questions[2]
	assert.Equal(t, model.QuestionTechnical+model.FollowUpSuffix, followUp.QuestionType)
	assert.Equal(t, "What trade-offs did you consider?", followUp.QuestionText)

	// 追问本身不再派生追问
	_, err = svc.SubmitAnswer(context.Background(), session.ID, followUp.ID, testUser, "We considered cost.")
	require.NoError(t, err)
	final, err := svc.GetSession(session.ID, testUser)
	require.NoError(t, err)
	assert.Len(t, final.Questions, 6)
}

func TestPracticeSummaryOnlyForPractice(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionHR, Difficulty: model.DifficultyEasy,
	})
	_, err := svc.PracticeSummary(session.ID, testUser)
	assert.ErrorIs(t, err, util.ErrUnsupportedOperation)
}

func TestPracticeSummaryContent(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModePractice,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(context.Background(), session.ID, session.Questions[0].ID, testUser,
		"The concept combines caching indexing and sharding to keep latency low while data volume grows over time.")
	require.NoError(t, err)

	summary, err := svc.PracticeSummary(session.ID, testUser)
	require.NoError(t, err)
	assert.Contains(t, summary, "Practice Session Summary")
	assert.Contains(t, summary, "Answered **1** of **5**")
}

func TestCompleteSessionFeedback(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	// 没有任何作答：固定提示
	empty, _ := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionHR, Difficulty: model.DifficultyEasy,
	})
	empty, err := svc.StartSession(context.Background(), empty.ID, testUser)
	require.NoError(t, err)
	completed, err := svc.CompleteSession(context.Background(), empty.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "No answers were provided during this interview.", completed.Feedback)

	// 模拟面试有作答：模型未配置时回退为按总分生成的文案
	mock, _ := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionHR, Difficulty: model.DifficultyEasy,
	})
	mock, err = svc.StartSession(context.Background(), mock.ID, testUser)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), mock.ID, mock.Questions[0].ID, testUser,
		"I have five years of backend experience and enjoy mentoring.")
	require.NoError(t, err)
	completed, err = svc.CompleteSession(context.Background(), mock.ID, testUser)
	require.NoError(t, err)
	assert.Contains(t, completed.Feedback, "Overall score:")
}

func TestBankQuestionProvenance(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	// 题库选题：每道题都带题库来源标记
	practice, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModePractice,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	practice, err := svc.StartSession(context.Background(), practice.ID, testUser)
	require.NoError(t, err)
	for _, q := range practice.Questions {
		require.NotNil(t, q.BankQuestionID)
	}

	// 生成题（题库无行为面题，走兜底题组）：来源标记为空
	mock, _ := svc.CreateSession(testUser, CreateSessionRequest{
		Mode: model.ModeMock, QuestionType: model.QuestionBehavioral, Difficulty: model.DifficultyEasy,
	})
	mock, err = svc.StartSession(context.Background(), mock.ID, testUser)
	require.NoError(t, err)
	for _, q := range mock.Questions {
		assert.Nil(t, q.BankQuestionID)
	}
}

func TestPracticeRejectsNonBankQuestion(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModePractice,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)

	// 混入一道没有题库来源的题：启发式评估无参考答案可比对
	rogue := &model.InterviewQuestion{
		SessionID:    session.ID,
		QuestionText: "Describe your ideal team.",
		QuestionType: model.QuestionTechnical,
		OrderIndex:   len(session.Questions),
	}
	require.NoError(t, db.Create(rogue).Error)

	_, err = svc.SubmitAnswer(context.Background(), session.ID, rogue.ID, testUser, "A small focused team.")
	assert.ErrorIs(t, err, util.ErrUnsupportedOperation)
}

func TestSubmitAnswerReportsCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, nil)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModePractice,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)

	for i, q := range session.Questions {
		result, err := svc.SubmitAnswer(context.Background(), session.ID, q.ID, testUser,
			"The concept combines caching indexing and sharding to keep latency low.")
		require.NoError(t, err)
		if i < len(session.Questions)-1 {
			assert.False(t, result.IsComplete)
			require.NotNil(t, result.NextQuestion)
		} else {
			assert.True(t, result.IsComplete)
			assert.Nil(t, result.NextQuestion)
		}
	}
}

func TestConcurrentSubmitsKeepDenseOrder(t *testing.T) {
	db := newTestDB(t)
	srv := evalStubServer(t)
	defer srv.Close()

	ai := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	svc := newInterviewService(t, db, ai)

	role := seedRole(t, db, "Backend Engineer")
	seedPracticePool(t, db, &role.ID, 5)

	session, _ := svc.CreateSession(testUser, CreateSessionRequest{
		TargetRole: role.Name, Mode: model.ModeMock,
		QuestionType: model.QuestionTechnical, Difficulty: model.DifficultyEasy,
	})
	session, err := svc.StartSession(context.Background(), session.ID, testUser)
	require.NoError(t, err)
	require.Len(t, session.Questions, 5)

	// 两个并发提交各自触发一次追问插入，行锁串行化保证序号稠密
	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []string{session.Questions[0].ID, session.Questions[3].ID}
	for i, qid := range targets {
		wg.Add(1)
		go func(i int, qid string) {
			defer wg.Done()
			_, errs[i] = svc.SubmitAnswer(context.Background(), session.ID, qid, testUser, "We used sharding.")
		}(i, qid)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	updated, err := svc.GetSession(session.ID, testUser)
	require.NoError(t, err)
	require.Len(t, updated.Questions, 7)
	for i, q := range updated.Questions {
		assert.Equal(t, i, q.OrderIndex)
	}
}
