package repository

import (
	"interview_coach_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.InterviewSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id string) (*model.InterviewSession, error) {
	var s model.InterviewSession
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc")
	}).Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListByUser(userID string, page, limit int) ([]model.InterviewSession, int64, error) {
	var ss []model.InterviewSession
	var total int64
	query := r.DB.Model(&model.InterviewSession{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

func (r *SessionRepository) Update(session *model.InterviewSession) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) CreateQuestions(questions []model.InterviewQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *SessionRepository) FindQuestion(sessionID, questionID string) (*model.InterviewQuestion, error) {
	var q model.InterviewQuestion
	err := r.DB.Where("id = ? AND session_id = ?", questionID, sessionID).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// NextUnanswered 返回全会话中序号最小的未作答题目
func (r *SessionRepository) NextUnanswered(sessionID string) (*model.InterviewQuestion, error) {
	var q model.InterviewQuestion
	err := r.DB.Where("session_id = ? AND answer IS NULL", sessionID).
		Order("order_index asc").First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Serialize 在事务里自增会话行的 lock_version，借助行锁把同一会话的并发操作
// 串行化；fn 在持有行锁的事务中执行
func (r *SessionRepository) Serialize(sessionID string, fn func(tx *gorm.DB) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.InterviewSession{}).
			Where("id = ?", sessionID).
			Update("lock_version", gorm.Expr("lock_version + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return fn(tx)
	})
}

// InsertFollowUp 在 afterIndex 之后插入追问：先把其后的题目整体后移一位，
// 保证序号保持稠密且无重复
func (r *SessionRepository) InsertFollowUp(tx *gorm.DB, sessionID string, afterIndex int, q *model.InterviewQuestion) error {
	err := tx.Model(&model.InterviewQuestion{}).
		Where("session_id = ? AND order_index > ?", sessionID, afterIndex).
		Update("order_index", gorm.Expr("order_index + 1")).Error
	if err != nil {
		return err
	}
	q.SessionID = sessionID
	q.OrderIndex = afterIndex + 1
	return tx.Create(q).Error
}
