package model

import "madmin/server/pkg/types"

// AccessToken 访问令牌记录，每次登录产生一条
type AccessToken struct {
	BaseModel
	UserID       uint           `gorm:"index" json:"userId"`
	Value        string         `gorm:"size:500;uniqueIndex" json:"value"`
	IP           string         `gorm:"size:50" json:"ip"`
	UserAgent    string         `gorm:"size:500" json:"userAgent"`
	ExpiredAt    types.DateTime `json:"expiredAt"`
	RefreshToken *RefreshToken  `gorm:"foreignKey:AccessTokenID;constraint:OnDelete:CASCADE" json:"refreshToken,omitempty"`
}

// TableName 表名
func (AccessToken) TableName() string {
	return "sys_access_token"
}

// RefreshToken 刷新令牌记录，与访问令牌一一对应
type RefreshToken struct {
	BaseModel
	AccessTokenID uint           `gorm:"uniqueIndex" json:"accessTokenId"`
	Value         string         `gorm:"size:500;uniqueIndex" json:"value"`
	ExpiredAt     types.DateTime `json:"expiredAt"`
}

// TableName 表名
func (RefreshToken) TableName() string {
	return "sys_refresh_token"
}
