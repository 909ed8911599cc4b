package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id                 string         `gorm:"type:text;primaryKey"`
	SessionId          string         `gorm:"type:text;not null;index"`
	TimeStamp          time.Time      `gorm:"not null;index"`
	Sender             string         `gorm:"type:text;not null"`
	Tokens             int            `gorm:"not null;default:0"`
	PromptTokens       int            `gorm:"not null;default:0"`
	Text               string         `gorm:"type:text"`
	Products           datatypes.JSON `gorm:"type:jsonb"`
	CustomerAttributes datatypes.JSON `gorm:"type:jsonb"`
	ExtraQuestions     datatypes.JSON `gorm:"type:jsonb"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
