package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentFrequency 收入发放频率
type PaymentFrequency string

const (
	FrequencyWeekly   PaymentFrequency = "Weekly"
	FrequencyBiweekly PaymentFrequency = "Biweekly"
	FrequencyMonthly  PaymentFrequency = "Monthly"
)

// GetPaymentFrequencies 获取所有发放频率（表单下拉顺序）
func GetPaymentFrequencies() []PaymentFrequency {
	return []PaymentFrequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}
}

// Valid 是否为已知的发放频率
func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// DateLayout 收入日期格式（日历日期，不含时间）
const DateLayout = "2006-01-02"

// Income 收入记录模型
type Income struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	UserID           uint             `json:"user_id" gorm:"index;not null"`
	Source           string           `json:"source" gorm:"size:100;not null"`
	Amount           decimal.Decimal  `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date             time.Time        `json:"date" gorm:"type:date;not null"`
	PaymentFrequency PaymentFrequency `json:"payment_frequency" gorm:"size:20;not null"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `json:"-" gorm:"index"`
	User             User             `json:"-" gorm:"foreignKey:UserID"`
}

func (Income) TableName() string {
	return "incomes"
}
