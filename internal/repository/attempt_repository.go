package repository

import (
	"lingua_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindActive 查找 (learner, quiz) 的未终结挑战
func (r *AttemptRepository) FindActive(userID, quizID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ? AND status IN ?",
		userID, quizID, []model.AttemptStatus{model.AttemptStarted, model.AttemptInProgress}).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AbandonOpen 条件转移：仅当挑战仍未终结时置为 abandoned 并释放 active_key。
// 与并发提交竞争时不生效（返回 0 行），已判分结果不会被覆盖。
func (r *AttemptRepository) AbandonOpen(attemptID uint) (int64, error) {
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status IN ?", attemptID,
			[]model.AttemptStatus{model.AttemptStarted, model.AttemptInProgress}).
		Updates(map[string]interface{}{"status": model.AttemptAbandoned, "active_key": nil})
	return res.RowsAffected, res.Error
}

func (r *AttemptRepository) ListByUserAndQuiz(userID, quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}

// ListScoredByUserAndCourse 课程进度汇总的输入：该学习者在课程内所有已判分挑战
func (r *AttemptRepository) ListScoredByUserAndCourse(userID, courseID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, model.AttemptScored).
		Find(&attempts).Error
	return attempts, err
}

// UpsertAnswer 按 (attempt_id, question_id) 粒度覆盖写入：同题重答为替换而非追加，
// 并发重试时最后一次写入生效，不同题目互不影响。
func (r *AttemptRepository) UpsertAnswer(answer *model.AttemptAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_options", "answered_at", "updated_at",
		}),
	}).Create(answer).Error
}

func (r *AttemptRepository) GetAnswers(attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

func (r *AttemptRepository) CountAnswers(attemptID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AttemptAnswer{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}
