package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/repository"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 难度决定一场面试的题目数量
var questionCounts = map[string]int{
	model.DifficultyEasy:   5,
	model.DifficultyMedium: 7,
	model.DifficultyHard:   10,
}

// 刷题练习至少需要的题库题目数
const minPracticePool = 3

// InterviewService 面试会话编排：生命周期推进、选题、答题评估、追问插入
type InterviewService struct {
	sessionRepo *repository.SessionRepository
	bankService *QuestionBankService
	aiService   *AIService
	generative  AnswerEvaluator
	heuristic   AnswerEvaluator
}

func NewInterviewService(
	sessionRepo *repository.SessionRepository,
	bankService *QuestionBankService,
	aiService *AIService,
) *InterviewService {
	return &InterviewService{
		sessionRepo: sessionRepo,
		bankService: bankService,
		aiService:   aiService,
		generative:  NewGenerativeEvaluator(aiService),
		heuristic:   NewHeuristicEvaluator(),
	}
}

type CreateSessionRequest struct {
	TargetRole   string `json:"targetRole"`
	Mode         string `json:"mode" binding:"required,oneof=MOCK PRACTICE"`
	QuestionType string `json:"questionType" binding:"required,oneof=TECHNICAL BEHAVIORAL HR MIXED"`
	Difficulty   string `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
}

// SubmitAnswerResult 答题结果：本题评估 + 下一道未作答题目（全部答完为 nil）
type SubmitAnswerResult struct {
	Evaluation   *model.AnswerEvaluation  `json:"evaluation"`
	NextQuestion *model.InterviewQuestion `json:"nextQuestion,omitempty"`
	IsComplete   bool                     `json:"isComplete"`
}

func (s *InterviewService) CreateSession(userID string, req CreateSessionRequest) (*model.InterviewSession, error) {
	session := &model.InterviewSession{
		UserID:       userID,
		TargetRole:   req.TargetRole,
		Mode:         req.Mode,
		QuestionType: req.QuestionType,
		Difficulty:   req.Difficulty,
		Status:       model.StatusPending,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *InterviewService) GetSession(sessionID, userID string) (*model.InterviewSession, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *InterviewService) ListSessions(userID string, page, limit int) ([]model.InterviewSession, int64, error) {
	return s.sessionRepo.ListByUser(userID, page, limit)
}

// StartSession 启动会话：按难度定题量选题并转入 IN_PROGRESS。
// 只有 PENDING 状态可以启动
func (s *InterviewService) StartSession(ctx context.Context, sessionID, userID string) (*model.InterviewSession, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusPending {
		return nil, util.ErrInvalidSessionState
	}

	count := questionCounts[session.Difficulty]
	var questions []model.InterviewQuestion

	switch session.Mode {
	case model.ModePractice:
		questions, err = s.selectPracticeQuestions(ctx, session, count)
	default:
		questions, err = s.selectMockQuestions(ctx, session, count)
	}
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, util.ErrInsufficientBankQuestions
	}

	err = s.sessionRepo.Serialize(sessionID, func(tx *gorm.DB) error {
		for i := range questions {
			questions[i].SessionID = sessionID
			questions[i].OrderIndex = i
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&model.InterviewSession{}).Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":     model.StatusInProgress,
				"started_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(sessionID, userID)
}

// selectMockQuestions 模拟面试选题：题库优先，数量不足时丢弃部分结果，
// 整组改由模型生成
func (s *InterviewService) selectMockQuestions(ctx context.Context, session *model.InterviewSession, count int) ([]model.InterviewQuestion, error) {
	banked, err := s.bankService.Select(ctx, session.TargetRole, session.QuestionType, session.Difficulty, count)
	if err != nil {
		return nil, err
	}

	if len(banked) >= count {
		return bankToInterviewQuestions(banked[:count]), nil
	}

	logger.Log.Info("bank pool under-supplied, regenerating full question set",
		zap.String("sessionId", session.ID),
		zap.Int("banked", len(banked)),
		zap.Int("wanted", count))

	roleName := session.TargetRole
	if roleName == "" {
		roleName = "a software engineering"
	}

	generated := s.aiService.GenerateQuestions(ctx, roleName, session.QuestionType, session.Difficulty, count)
	questions := make([]model.InterviewQuestion, 0, len(generated))
	for _, g := range generated {
		questions = append(questions, model.InterviewQuestion{
			QuestionText: g.QuestionText,
			QuestionType: g.QuestionType,
		})
	}
	return questions, nil
}

// selectPracticeQuestions 刷题练习只用题库（启发式评估依赖参考答案），
// 池子太小直接失败，小幅不足时按实际数量进行
func (s *InterviewService) selectPracticeQuestions(ctx context.Context, session *model.InterviewSession, count int) ([]model.InterviewQuestion, error) {
	banked, err := s.bankService.Select(ctx, session.TargetRole, session.QuestionType, session.Difficulty, count)
	if err != nil {
		return nil, err
	}
	if len(banked) < minPracticePool {
		return nil, util.ErrInsufficientBankQuestions
	}
	if len(banked) > count {
		banked = banked[:count]
	}
	return bankToInterviewQuestions(banked), nil
}

func bankToInterviewQuestions(banked []model.BankQuestion) []model.InterviewQuestion {
	questions := make([]model.InterviewQuestion, 0, len(banked))
	for _, b := range banked {
		bankID := b.ID
		questions = append(questions, model.InterviewQuestion{
			BankQuestionID: &bankID,
			QuestionText:   b.QuestionText,
			QuestionType:   b.QuestionType,
			IdealAnswer:    b.IdealAnswer,
		})
	}
	return questions
}

// SubmitAnswer 提交答案并评估。同一会话的提交通过行锁串行化；
// 重复提交覆盖旧答案（以最后一次为准）
func (s *InterviewService) SubmitAnswer(ctx context.Context, sessionID, questionID, userID, answer string) (*SubmitAnswerResult, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusInProgress {
		return nil, util.ErrInvalidSessionState
	}

	question, err := s.sessionRepo.FindQuestion(sessionID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	evaluator := s.generative
	if session.Mode == model.ModePractice {
		// 启发式评估依赖题库参考答案，非题库题无从比对
		if question.BankQuestionID == nil {
			return nil, util.ErrUnsupportedOperation
		}
		evaluator = s.heuristic
	}

	var result SubmitAnswerResult
	err = s.sessionRepo.Serialize(sessionID, func(tx *gorm.DB) error {
		eval := evaluator.Evaluate(ctx, question, answer)
		metricsJSON, _ := json.Marshal(eval.Metrics)
		evalJSON, _ := json.Marshal(eval)
		now := time.Now()

		err := tx.Model(&model.InterviewQuestion{}).Where("id = ?", question.ID).
			Updates(map[string]interface{}{
				"answer":      answer,
				"score":       eval.Score,
				"feedback":    eval.Feedback,
				"metrics":     metricsJSON,
				"evaluation":  evalJSON,
				"answered_at": now,
			}).Error
		if err != nil {
			return err
		}

		// 追问只在模拟面试中派生，且追问本身不再追问
		if session.Mode == model.ModeMock &&
			eval.NeedsFollowUp &&
			!strings.HasSuffix(question.QuestionType, model.FollowUpSuffix) {
			followUpText := eval.FollowUpText
			if followUpText == "" {
				followUpText = "Can you elaborate on your previous answer with a concrete example?"
			}
			followUp := &model.InterviewQuestion{
				QuestionText: followUpText,
				QuestionType: question.QuestionType + model.FollowUpSuffix,
			}
			if err := s.sessionRepo.InsertFollowUp(tx, sessionID, question.OrderIndex, followUp); err != nil {
				return err
			}
		}

		result.Evaluation = eval
		return nil
	})
	if err != nil {
		return nil, err
	}

	next, err := s.sessionRepo.NextUnanswered(sessionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	result.NextQuestion = next
	result.IsComplete = next == nil

	return &result, nil
}

// CompleteSession 结束会话：总分为已作答题目分数的均值，未作答题目不参与。
// 幂等操作：对已结束的会话重复调用只会按当前答题状态重算总分和反馈
func (s *InterviewService) CompleteSession(ctx context.Context, sessionID, userID string) (*model.InterviewSession, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	sum, answered := 0, 0
	for _, q := range session.Questions {
		if q.Answered() && q.Score != nil {
			sum += *q.Score
			answered++
		}
	}
	overall := 0
	if answered > 0 {
		overall = util.RoundScore(float64(sum) / float64(answered))
	}

	feedback := s.sessionFeedback(ctx, session, overall, answered)

	err = s.sessionRepo.Serialize(sessionID, func(tx *gorm.DB) error {
		now := time.Now()
		return tx.Model(&model.InterviewSession{}).Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":        model.StatusCompleted,
				"overall_score": overall,
				"feedback":      feedback,
				"completed_at":  now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetSession(sessionID, userID)
}

// sessionFeedback 会话级总结：刷题练习用确定性的 Markdown 总结，
// 模拟面试用模型生成（带兜底），没有任何作答时固定提示
func (s *InterviewService) sessionFeedback(ctx context.Context, session *model.InterviewSession, overall, answered int) string {
	if answered == 0 {
		return "No answers were provided during this interview."
	}
	if session.Mode == model.ModePractice {
		return buildPracticeSummary(session)
	}
	return s.aiService.GenerateSessionFeedback(ctx, session.TargetRole, transcript(session), overall)
}

// QuestionHint 给出某道题的答题提示
func (s *InterviewService) QuestionHint(ctx context.Context, sessionID, questionID, userID string) (string, []string, error) {
	if _, err := s.GetSession(sessionID, userID); err != nil {
		return "", nil, err
	}
	question, err := s.sessionRepo.FindQuestion(sessionID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrQuestionNotFound
		}
		return "", nil, err
	}
	hint, keyPoints := s.aiService.GenerateQuestionHint(ctx, question.QuestionText)
	return hint, keyPoints, nil
}

// PracticeSummary 刷题练习的总结报告（Markdown），按分数段统计并给出建议
func (s *InterviewService) PracticeSummary(sessionID, userID string) (string, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return "", err
	}
	if session.Mode != model.ModePractice {
		return "", util.ErrUnsupportedOperation
	}
	return buildPracticeSummary(session), nil
}

func buildPracticeSummary(session *model.InterviewSession) string {
	var strong, good, fair, weak, answered, sum int
	var weakTopics []string
	for _, q := range session.Questions {
		if !q.Answered() || q.Score == nil {
			continue
		}
		answered++
		sum += *q.Score
		switch {
		case *q.Score >= 85:
			strong++
		case *q.Score >= 70:
			good++
		case *q.Score >= 55:
			fair++
		default:
			weak++
			weakTopics = append(weakTopics, q.QuestionText)
		}
	}

	var sb strings.Builder
	sb.WriteString("# Practice Session Summary\n\n")
	fmt.Fprintf(&sb, "Answered **%d** of **%d** questions.\n\n", answered, len(session.Questions))
	if answered > 0 {
		fmt.Fprintf(&sb, "Average score: **%d**\n\n", util.RoundScore(float64(sum)/float64(answered)))
	}
	sb.WriteString("## Breakdown\n\n")
	fmt.Fprintf(&sb, "- Excellent (85+): %d\n", strong)
	fmt.Fprintf(&sb, "- Good (70-84): %d\n", good)
	fmt.Fprintf(&sb, "- Fair (55-69): %d\n", fair)
	fmt.Fprintf(&sb, "- Needs work (<55): %d\n", weak)
	if len(weakTopics) > 0 {
		sb.WriteString("\n## Recommended review\n\n")
		for _, t := range weakTopics {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
	}
	return sb.String()
}
