package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CertificateService 负责课程修完后的证书签发、取代与公开验证。
type CertificateService struct {
	CertRepo     *repository.CertificateRepository
	UserRepo     *repository.UserRepository
	CourseRepo   *repository.CourseRepository
	StandingRepo *repository.StandingRepository
	Storage      *StorageService
	Redis        *redis.Client
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewCertificateService(
	certRepo *repository.CertificateRepository,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	standingRepo *repository.StandingRepository,
	storage *StorageService,
	rdb *redis.Client,
	cfg *config.Config,
	db *gorm.DB,
) *CertificateService {
	return &CertificateService{
		CertRepo:     certRepo,
		UserRepo:     userRepo,
		CourseRepo:   courseRepo,
		StandingRepo: standingRepo,
		Storage:      storage,
		Redis:        rdb,
		Cfg:          cfg,
		DB:           db,
	}
}

func currentKey(userID, courseID uint) string {
	return fmt.Sprintf("%d:%d", userID, courseID)
}

// CertificateView 公开的证书数据：只含颁发时已快照的信息，
// 不携带内部学习者标识。
type CertificateView struct {
	CertificateID string                 `json:"certificateId"`
	HolderName    string                 `json:"holderName"`
	HolderEmail   string                 `json:"holderEmail"`
	LanguageCode  string                 `json:"languageCode"`
	CourseTitle   string                 `json:"courseTitle"`
	Level         model.ProficiencyLevel `json:"level"`
	FinalScore    int                    `json:"finalScore"`
	CompletedAt   time.Time              `json:"completedAt"`
	IssuedAt      time.Time              `json:"issuedAt"`
	Verified      bool                   `json:"verified"`
	URL           string                 `json:"url"`
}

func toView(c *model.Certificate) *CertificateView {
	return &CertificateView{
		CertificateID: c.CertificateID,
		HolderName:    c.HolderName,
		HolderEmail:   c.HolderEmail,
		LanguageCode:  c.LanguageCode,
		CourseTitle:   c.CourseTitle,
		Level:         c.Level,
		FinalScore:    c.FinalScore,
		CompletedAt:   c.CompletedAt,
		IssuedAt:      c.IssuedAt,
		Verified:      c.Verified,
		URL:           c.URL,
	}
}

// IssueIfEligible 课程修完时签发证书。
// 已有与当前成绩一致的有效证书时直接返回，不重复铸造；
// 成绩提升（等级或分数）时取代旧证书：旧证书标记为未验证并保留，
// 新证书以新标识签发。未修完课程返回 (nil, nil)。
func (s *CertificateService) IssueIfEligible(userID, courseID uint) (*model.Certificate, error) {
	standing, err := s.StandingRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !standing.Completed {
		return nil, nil
	}

	current, err := s.CertRepo.FindCurrent(userID, courseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if current != nil {
		// 成绩未提升：保持现有证书
		if current.Level == standing.Level && current.FinalScore >= standing.WeightedAverage {
			return current, nil
		}
		return s.supersede(userID, courseID, current, standing)
	}

	return s.mint(userID, courseID, standing, nil)
}

// GetCurrent 学习者查询自己当前有效证书
func (s *CertificateService) GetCurrent(userID, courseID uint) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindCurrent(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

// ListHistory 含已被取代的历史证书，审计链完整保留
func (s *CertificateService) ListHistory(userID, courseID uint) ([]model.Certificate, error) {
	return s.CertRepo.ListByUserAndCourse(userID, courseID)
}

// Verify 公开验证入口：只回答"此证书是否有效"，不泄露学习者是否存在。
// 查询结果经 redis 缓存。
func (s *CertificateService) Verify(ctx context.Context, certificateID string) (*CertificateView, error) {
	cacheKey := "cert:verify:" + certificateID

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var view CertificateView
			if json.Unmarshal([]byte(cached), &view) == nil {
				return &view, nil
			}
		}
	}

	cert, err := s.CertRepo.FindByCertificateID(certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}

	view := toView(cert)
	if s.Redis != nil {
		ttl := time.Duration(s.Cfg.Certificate.VerifyCacheSeconds) * time.Second
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		if data, err := json.Marshal(view); err == nil {
			s.Redis.Set(ctx, cacheKey, data, ttl)
		}
	}
	return view, nil
}

// mint 铸造新证书。先写库（唯一约束决出并发竞争的胜者），
// 再渲染证书文档取得公开URL。
func (s *CertificateService) mint(userID, courseID uint, standing *model.CourseStanding, superseded *model.Certificate) (*model.Certificate, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	languageCode := ""
	if lang, err := s.CourseRepo.FindLanguageByID(course.LanguageID); err == nil {
		languageCode = lang.Code
	}

	now := time.Now()
	key := currentKey(userID, courseID)
	cert := &model.Certificate{
		CertificateID: model.GenerateUUID(),
		UserID:        userID,
		CourseID:      courseID,
		HolderName:    user.Name,
		HolderEmail:   user.Email,
		LanguageCode:  languageCode,
		CourseTitle:   course.Title,
		Level:         standing.Level,
		FinalScore:    standing.WeightedAverage,
		CompletedAt:   now,
		IssuedAt:      now,
		Verified:      true,
		CurrentKey:    &key,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if superseded != nil {
			superseded.Verified = false
			superseded.CurrentKey = nil
			superseded.SupersededBy = cert.CertificateID
			if err := tx.Save(superseded).Error; err != nil {
				return err
			}
		}
		return tx.Create(cert).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 输掉并发签发竞争：胜者已经达成目标状态，返回对方的证书
			if winner, ferr := s.CertRepo.FindCurrent(userID, courseID); ferr == nil {
				return winner, nil
			}
			return nil, util.ErrConcurrentConflict
		}
		return nil, err
	}

	monitoring.CertificatesIssued.Inc()

	if url, err := s.renderDocument(cert); err == nil {
		cert.URL = url
		if err := s.CertRepo.Update(cert); err != nil {
			logger.Log.Error("failed to persist certificate URL", zap.String("certificateId", cert.CertificateID), zap.Error(err))
		}
	} else {
		logger.Log.Error("failed to render certificate document", zap.String("certificateId", cert.CertificateID), zap.Error(err))
	}

	if superseded != nil {
		s.invalidateVerifyCache(superseded.CertificateID)
	}
	return cert, nil
}

func (s *CertificateService) supersede(userID, courseID uint, current *model.Certificate, standing *model.CourseStanding) (*model.Certificate, error) {
	return s.mint(userID, courseID, standing, current)
}

func (s *CertificateService) renderDocument(cert *model.Certificate) (string, error) {
	if s.Storage == nil {
		return "", nil
	}
	doc, err := json.MarshalIndent(toView(cert), "", "  ")
	if err != nil {
		return "", err
	}
	return s.Storage.SaveCertificateDocument(context.Background(), cert.CertificateID, doc)
}

func (s *CertificateService) invalidateVerifyCache(certificateID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), "cert:verify:"+certificateID)
}
