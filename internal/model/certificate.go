package model

import "time"

// swagger:model Certificate
type Certificate struct {
	BaseModel

	// CertificateID 对外的可验证标识，随机不可枚举
	CertificateID string `gorm:"size:36;uniqueIndex;not null" json:"certificateId"`

	UserID   uint `gorm:"index;type:bigint unsigned" json:"-"`
	CourseID uint `gorm:"index;type:bigint unsigned" json:"-"`

	// 颁发时的持有人快照，后续资料修改不影响证书
	HolderName  string `gorm:"size:100;not null" json:"holderName"`
	HolderEmail string `gorm:"size:100;not null" json:"holderEmail"`

	LanguageCode string           `gorm:"size:10" json:"languageCode"`
	CourseTitle  string           `gorm:"size:255" json:"courseTitle"`
	Level        ProficiencyLevel `gorm:"size:20" json:"level"`
	FinalScore   int              `json:"finalScore"`

	CompletedAt time.Time `json:"completedAt"`
	IssuedAt    time.Time `json:"issuedAt"`

	Verified     bool   `gorm:"default:true" json:"verified"`
	SupersededBy string `gorm:"size:36" json:"supersededBy,omitempty"` // CertificateID of the replacement
	URL          string `gorm:"size:255" json:"url"`

	// CurrentKey "userID:courseID" while this is the current verified
	// certificate, NULL once superseded. The unique index guarantees at most
	// one verified certificate per (learner, course) across processes.
	CurrentKey *string `gorm:"size:64;uniqueIndex" json:"-"`
}

func (Certificate) TableName() string {
	return "certificates"
}
