package service

import (
	"context"
	"encoding/json"
	"errors"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/repository"
	"interview_coach_backend/internal/util"
	"interview_coach_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CodingService 判题引擎：跑测试用例、判定结果分类、落盘提交记录
type CodingService struct {
	codingRepo *repository.CodingRepository
	sandbox    *SandboxService
	aiService  *AIService
}

func NewCodingService(codingRepo *repository.CodingRepository, sandbox *SandboxService, aiService *AIService) *CodingService {
	return &CodingService{
		codingRepo: codingRepo,
		sandbox:    sandbox,
		aiService:  aiService,
	}
}

// ChallengeSummary 列表项：题目概要 + 用户最佳提交
type ChallengeSummary struct {
	model.CodingChallenge
	BestSubmission *model.CodingSubmission `json:"bestSubmission,omitempty"`
}

func (s *CodingService) ListChallenges(userID, difficulty, category string, page, limit int) ([]ChallengeSummary, int64, error) {
	challenges, total, err := s.codingRepo.ListChallenges(difficulty, category, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ChallengeSummary, 0, len(challenges))
	for _, ch := range challenges {
		ch.TestCases = nil
		summary := ChallengeSummary{CodingChallenge: ch}
		if best, err := s.codingRepo.BestSubmission(userID, ch.ID); err == nil {
			summary.BestSubmission = best
		}
		summaries = append(summaries, summary)
	}
	return summaries, total, nil
}

// GetChallenge 题目详情。隐藏用例对外脱敏
func (s *CodingService) GetChallenge(id string) (*model.CodingChallenge, error) {
	challenge, err := s.codingRepo.FindChallengeByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	for i := range challenge.TestCases {
		if challenge.TestCases[i].IsHidden {
			challenge.TestCases[i].Input = "[Hidden test case]"
			challenge.TestCases[i].ExpectedOutput = "[Hidden]"
		}
	}
	return challenge, nil
}

// RunCode 试运行：只跑可见用例，不落盘。返回全部用例的累计执行耗时（毫秒）
func (s *CodingService) RunCode(ctx context.Context, challengeID, language, code string) ([]model.TestCaseResult, int64, error) {
	challenge, err := s.codingRepo.FindChallengeByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrChallengeNotFound
		}
		return nil, 0, err
	}
	if err := validateLanguage(challenge, language); err != nil {
		return nil, 0, err
	}

	var visible []model.ChallengeTestCase
	for _, tc := range challenge.TestCases {
		if !tc.IsHidden {
			visible = append(visible, tc)
		}
	}

	start := time.Now()
	results, _ := s.runCases(ctx, language, code, visible)
	return results, time.Since(start).Milliseconds(), nil
}

// validateLanguage 题目声明了语言白名单时按白名单校验，否则按沙箱的全局语言表
func validateLanguage(challenge *model.CodingChallenge, language string) error {
	if len(challenge.SupportedLanguages) > 0 {
		for _, l := range challenge.SupportedLanguages {
			if l == language {
				return nil
			}
		}
		return util.ErrUnsupportedLanguage
	}
	if _, ok := languageVersions[language]; !ok {
		return util.ErrUnsupportedLanguage
	}
	return nil
}

// SubmitCode 正式提交：跑全部用例、分类判定、可选的代码质量分析，
// 写入不可变的提交记录。对外结果中隐藏用例脱敏
func (s *CodingService) SubmitCode(ctx context.Context, userID, challengeID, language, code string) (*model.CodingSubmission, error) {
	challenge, err := s.codingRepo.FindChallengeByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if err := validateLanguage(challenge, language); err != nil {
		return nil, err
	}

	start := time.Now()
	results, passed := s.runCases(ctx, language, code, challenge.TestCases)
	elapsedMs := time.Since(start).Milliseconds()
	total := len(results)
	status := classify(results, passed, total)

	// 质量分析失败不致命：回退为用例通过率计分
	score := util.RatioScore(passed, total)
	var analysisJSON json.RawMessage
	if analysis := s.aiService.AnalyzeCode(ctx, challenge.Description, code, language); analysis != nil {
		score = analysis.Score
		analysisJSON, _ = json.Marshal(analysis)
	}

	masked := make([]model.TestCaseResult, len(results))
	for i, r := range results {
		masked[i] = r
		if i < len(challenge.TestCases) && challenge.TestCases[i].IsHidden {
			masked[i].Input = "[Hidden test case]"
			masked[i].ExpectedOutput = "[Hidden]"
			if r.Passed {
				masked[i].ActualOutput = "Correct"
			} else {
				masked[i].ActualOutput = "Incorrect"
			}
			if r.Error != "" {
				masked[i].Error = "Runtime or compilation error"
			}
		}
	}
	resultsJSON, _ := json.Marshal(masked)

	submission := &model.CodingSubmission{
		UserID:          userID,
		ChallengeID:     challengeID,
		Language:        language,
		Code:            code,
		Status:          status,
		Score:           score,
		PassedTests:     passed,
		TotalTests:      total,
		ExecutionTimeMs: elapsedMs,
		Results:         resultsJSON,
		AIAnalysis:      analysisJSON,
	}
	if err := s.codingRepo.CreateSubmission(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// runCases 逐个执行用例。单个用例的沙箱故障记为失败，不中断整次提交
func (s *CodingService) runCases(ctx context.Context, language, code string, cases []model.ChallengeTestCase) ([]model.TestCaseResult, int) {
	results := make([]model.TestCaseResult, 0, len(cases))
	passed := 0

	for _, tc := range cases {
		result := model.TestCaseResult{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		}

		exec, err := s.sandbox.Execute(ctx, language, code, tc.Input)
		if err != nil {
			logger.Log.Warn("sandbox execution failed for test case",
				zap.String("caseId", tc.ID), zap.Error(err))
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		result.ActualOutput = strings.TrimSpace(exec.Stdout)
		if exec.Errored {
			result.Error = exec.Stderr
		} else if result.ActualOutput == strings.TrimSpace(tc.ExpectedOutput) {
			result.Passed = true
			passed++
		}
		results = append(results, result)
	}

	return results, passed
}

// classify 判定提交结果：一个用例都没过且有报错时按首个错误信息区分
// 编译错误与运行时错误
func classify(results []model.TestCaseResult, passed, total int) string {
	if total == 0 {
		return model.VerdictWrongAnswer
	}

	var firstError string
	for _, r := range results {
		if r.Error != "" {
			firstError = r.Error
			break
		}
	}

	if firstError != "" && passed == 0 {
		lower := strings.ToLower(firstError)
		if strings.Contains(lower, "syntax") || strings.Contains(lower, "compile") {
			return model.VerdictCompilationError
		}
		return model.VerdictRuntimeError
	}

	if passed == total {
		return model.VerdictAccepted
	}
	return model.VerdictWrongAnswer
}

func (s *CodingService) ListSubmissions(userID, challengeID string, page, limit int) ([]model.CodingSubmission, int64, error) {
	return s.codingRepo.ListSubmissions(userID, challengeID, page, limit)
}

func (s *CodingService) GetSubmission(id, userID string) (*model.CodingSubmission, error) {
	submission, err := s.codingRepo.FindSubmissionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return submission, nil
}
