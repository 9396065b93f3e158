package repository

import (
	"interview_coach_backend/internal/model"

	"gorm.io/gorm"
)

type CodingRepository struct {
	DB *gorm.DB
}

func NewCodingRepository(db *gorm.DB) *CodingRepository {
	return &CodingRepository{DB: db}
}

func (r *CodingRepository) FindChallengeByID(id string) (*model.CodingChallenge, error) {
	var ch model.CodingChallenge
	err := r.DB.Preload("TestCases", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc")
	}).Where("id = ?", id).First(&ch).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *CodingRepository) ListChallenges(difficulty, category string, page, limit int) ([]model.CodingChallenge, int64, error) {
	var chs []model.CodingChallenge
	var total int64
	query := r.DB.Model(&model.CodingChallenge{}).Where("is_active = ?", true)
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&chs).Error
	return chs, total, err
}

func (r *CodingRepository) CreateChallenge(ch *model.CodingChallenge) error {
	return r.DB.Create(ch).Error
}

func (r *CodingRepository) CreateSubmission(s *model.CodingSubmission) error {
	return r.DB.Create(s).Error
}

func (r *CodingRepository) FindSubmissionByID(id string) (*model.CodingSubmission, error) {
	var s model.CodingSubmission
	err := r.DB.Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CodingRepository) ListSubmissions(userID, challengeID string, page, limit int) ([]model.CodingSubmission, int64, error) {
	var ss []model.CodingSubmission
	var total int64
	query := r.DB.Model(&model.CodingSubmission{}).Where("user_id = ?", userID)
	if challengeID != "" {
		query = query.Where("challenge_id = ?", challengeID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

// BestSubmission 用户在某题上的最高分提交
func (r *CodingRepository) BestSubmission(userID, challengeID string) (*model.CodingSubmission, error) {
	var s model.CodingSubmission
	err := r.DB.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Order("score desc, created_at asc").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
