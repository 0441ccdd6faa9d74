package repository

import (
	"lingua_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StandingRepository struct {
	DB *gorm.DB
}

func NewStandingRepository(db *gorm.DB) *StandingRepository {
	return &StandingRepository{DB: db}
}

// Upsert 按 (user_id, course_id) 原地重算写入，重复执行结果一致
func (r *StandingRepository) Upsert(standing *model.CourseStanding) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quiz_scores", "completion_percent", "weighted_average", "level", "completed", "updated_at",
		}),
	}).Create(standing).Error
}

func (r *StandingRepository) FindByUserAndCourse(userID, courseID uint) (*model.CourseStanding, error) {
	var s model.CourseStanding
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
