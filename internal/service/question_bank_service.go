package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_coach_backend/internal/model"
	"interview_coach_backend/internal/repository"
	"interview_coach_backend/pkg/logger"
	"math"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const bankCacheTTL = time.Hour

// QuestionBankService 题库选题：按岗位名称与难度抽取题目，
// 岗位解析和题目池查询都走 Redis 读穿缓存
type QuestionBankService struct {
	bankRepo *repository.BankRepository
	redis    *redis.Client
}

func NewQuestionBankService(bankRepo *repository.BankRepository, rdb *redis.Client) *QuestionBankService {
	return &QuestionBankService{
		bankRepo: bankRepo,
		redis:    rdb,
	}
}

func (s *QuestionBankService) ListRoles() ([]model.JobRole, error) {
	return s.bankRepo.ListRoles()
}

// Select 抽取 count 道题。MIXED 类型按 60% 技术题 + 40% 共享池（HR/行为面）
// 拆分并对合并后的题组整体洗牌；池子不足时原样返回，由调用方决定如何补足
func (s *QuestionBankService) Select(ctx context.Context, targetRole, questionType, difficulty string, count int) ([]model.BankQuestion, error) {
	if questionType == model.QuestionMixed {
		techCount := int(math.Ceil(float64(count) * 0.6))
		hrCount := count - techCount

		tech, err := s.pickRolePool(ctx, targetRole, model.QuestionTechnical, difficulty, techCount)
		if err != nil {
			return nil, err
		}
		shared, err := s.pickSharedPool(ctx, difficulty, hrCount)
		if err != nil {
			return nil, err
		}
		combined := append(tech, shared...)
		return sample(combined, len(combined)), nil
	}

	if questionType == model.QuestionHR || questionType == model.QuestionBehavioral {
		return s.pickSharedPool(ctx, difficulty, count)
	}

	return s.pickRolePool(ctx, targetRole, questionType, difficulty, count)
}

func (s *QuestionBankService) pickRolePool(ctx context.Context, targetRole, questionType, difficulty string, count int) ([]model.BankQuestion, error) {
	if count <= 0 || targetRole == "" {
		return nil, nil
	}

	roleID, err := s.resolveRoleID(ctx, targetRole)
	if err != nil {
		return nil, err
	}
	if roleID == "" {
		// 岗位不存在不是错误：返回空集，由上层走生成式兜底
		logger.Log.Warn("job role not found, returning empty bank pool", zap.String("targetRole", targetRole))
		return nil, nil
	}

	pool, err := s.cachedPool(ctx, bankCacheKey(roleID, questionType, difficulty), func() ([]model.BankQuestion, error) {
		return s.bankRepo.FindRoleQuestions(roleID, questionType, difficulty)
	})
	if err != nil {
		return nil, err
	}

	return sample(pool, count), nil
}

func (s *QuestionBankService) pickSharedPool(ctx context.Context, difficulty string, count int) ([]model.BankQuestion, error) {
	if count <= 0 {
		return nil, nil
	}

	pool, err := s.cachedPool(ctx, bankCacheKey("shared", "hr-behavioral", difficulty), func() ([]model.BankQuestion, error) {
		return s.bankRepo.FindSharedQuestions(difficulty)
	})
	if err != nil {
		return nil, err
	}

	return sample(pool, count), nil
}

// resolveRoleID 岗位名称到岗位 ID 的解析，带读穿缓存。
// 未命中岗位返回空字符串
func (s *QuestionBankService) resolveRoleID(ctx context.Context, targetRole string) (string, error) {
	key := fmt.Sprintf("bank:role:%s", targetRole)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			return cached, nil
		}
	}

	role, err := s.bankRepo.FindRoleByName(targetRole)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, role.ID, bankCacheTTL).Err(); err != nil {
			logger.Log.Warn("failed to cache role resolution", zap.String("key", key), zap.Error(err))
		}
	}
	return role.ID, nil
}

// cachedPool 读穿缓存：优先读 Redis，缺失时查库并回填（1 小时 TTL）。
// 缓存故障只降级为直查，不影响选题
func (s *QuestionBankService) cachedPool(ctx context.Context, key string, fetch func() ([]model.BankQuestion, error)) ([]model.BankQuestion, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var pool []model.BankQuestion
			if err := json.Unmarshal([]byte(cached), &pool); err == nil {
				return pool, nil
			}
		}
	}

	pool, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(pool); err == nil {
			if err := s.redis.Set(ctx, key, data, bankCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache bank pool", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return pool, nil
}

func bankCacheKey(scope, questionType, difficulty string) string {
	return fmt.Sprintf("bank:%s:%s:%s", scope, questionType, difficulty)
}

// sample Fisher-Yates 洗牌后取前 count 道；池子不足时全部返回
func sample(pool []model.BankQuestion, count int) []model.BankQuestion {
	shuffled := make([]model.BankQuestion, len(pool))
	copy(shuffled, pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	return shuffled
}
