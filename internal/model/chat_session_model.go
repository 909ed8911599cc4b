package model

import "time"

type ChatSession struct {
	Id         string    `gorm:"type:text;primaryKey"`
	Name       string    `gorm:"type:text;not null"`
	TokensUsed int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
