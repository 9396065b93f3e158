package repository

import (
	"interview_coach_backend/internal/model"

	"gorm.io/gorm"
)

type BankRepository struct {
	DB *gorm.DB
}

func NewBankRepository(db *gorm.DB) *BankRepository {
	return &BankRepository{DB: db}
}

func (r *BankRepository) FindRoleByID(id string) (*model.JobRole, error) {
	var role model.JobRole
	err := r.DB.Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *BankRepository) FindRoleByName(name string) (*model.JobRole, error) {
	var role model.JobRole
	err := r.DB.Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *BankRepository) ListRoles() ([]model.JobRole, error) {
	var roles []model.JobRole
	err := r.DB.Order("name asc").Find(&roles).Error
	return roles, err
}

// FindRoleQuestions 岗位专属池：绑定岗位的指定类型上架题目
func (r *BankRepository) FindRoleQuestions(roleID, questionType, difficulty string) ([]model.BankQuestion, error) {
	var qs []model.BankQuestion
	err := r.DB.Where("job_role_id = ? AND question_type = ? AND difficulty = ? AND is_active = ?",
		roleID, questionType, difficulty, true).Find(&qs).Error
	return qs, err
}

// FindSharedQuestions 共享池：不绑定岗位的 HR/行为面上架题目
func (r *BankRepository) FindSharedQuestions(difficulty string) ([]model.BankQuestion, error) {
	var qs []model.BankQuestion
	err := r.DB.Where("job_role_id IS NULL AND question_type IN ? AND difficulty = ? AND is_active = ?",
		[]string{model.QuestionHR, model.QuestionBehavioral}, difficulty, true).Find(&qs).Error
	return qs, err
}

func (r *BankRepository) CreateQuestion(q *model.BankQuestion) error {
	return r.DB.Create(q).Error
}
