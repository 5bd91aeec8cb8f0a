package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a member's cash account inside one guild.
type User struct {
	ID        string          `gorm:"primaryKey;column:id"`
	GuildID   string          `gorm:"primaryKey;column:guild_id"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(20,8);not null"`
	Version   int64           `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
