package model

// swagger:model Language
type Language struct {
	BaseModel
	Code       string `gorm:"size:10;uniqueIndex;not null" json:"code"` // ISO 639-1, e.g. "es"
	Name       string `gorm:"size:100;not null" json:"name"`
	NativeName string `gorm:"size:100" json:"nativeName"`
	Enabled    bool   `gorm:"default:true" json:"enabled"`
}

func (Language) TableName() string {
	return "languages"
}
