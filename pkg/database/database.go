package database

import (
	"fmt"
	"log"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 唯一约束冲突需要翻译为 gorm.ErrDuplicatedKey 供引擎识别并发竞争
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedLanguages(db)

	return db, nil
}

// Migrate 建表与索引（含活动挑战与当前证书的唯一约束）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Language{},
		&model.Course{},
		&model.Lesson{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuestionOption{},
		&model.QuizAttempt{},
		&model.AttemptAnswer{},
		&model.CourseStanding{},
		&model.Certificate{},
	)
}

// 默认语言（首次启动时为空则插入）
func seedLanguages(db *gorm.DB) {
	var count int64
	db.Model(&model.Language{}).Count(&count)
	if count == 0 {
		defaults := []model.Language{
			{Code: "en", Name: "English", NativeName: "English", Enabled: true},
			{Code: "es", Name: "Spanish", NativeName: "Español", Enabled: true},
			{Code: "fr", Name: "French", NativeName: "Français", Enabled: true},
			{Code: "de", Name: "German", NativeName: "Deutsch", Enabled: true},
			{Code: "zh", Name: "Chinese", NativeName: "中文", Enabled: true},
			{Code: "ja", Name: "Japanese", NativeName: "日本語", Enabled: true},
		}
		for _, l := range defaults {
			db.Create(&l)
		}
	}
}
