package repository

import (
	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.DB.Create(cert).Error
}

func (r *CertificateRepository) Update(cert *model.Certificate) error {
	return r.DB.Save(cert).Error
}

// FindCurrent 当前有效证书（未被取代的链头）
func (r *CertificateRepository) FindCurrent(userID, courseID uint) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ? AND verified = ?", userID, courseID, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) FindByCertificateID(certificateID string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("certificate_id = ?", certificateID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUserAndCourse 含历史被取代证书，按颁发时间倒序
func (r *CertificateRepository) ListByUserAndCourse(userID, courseID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("issued_at DESC").Find(&certs).Error
	return certs, err
}
