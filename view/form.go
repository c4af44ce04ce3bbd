package view

import (
	"strings"
	"time"

	"incometracker/models"

	"github.com/shopspring/decimal"
)

// 用户可见的提示文案
const (
	MsgFillAllFields       = "Please fill in all fields: Source, Amount, Date, and Payment Frequency."
	MsgInvalidDate         = "Date must be a valid date in YYYY-MM-DD format."
	MsgInvalidFrequency    = "Payment Frequency must be one of Weekly, Biweekly, Monthly."
	MsgAmountNotNumber     = "Amount must be a valid number."
	MsgAmountNotPositive   = "Amount must be greater than 0."
	MsgAmountTooLarge      = "Amount must be less than 100000000."
	MsgSelectIncomeDelete  = "Please select an income to delete"
	NoticeIncomeAdded      = "Income added successfully"
	NoticeIncomeUpdated    = "Income updated successfully"
	NoticeIncomeDeleted    = "Income deleted successfully"
	NoticeNoteAdded        = "Note added"
	NoticeNoteDeleted      = "Note deleted"
	NoticeNoteEmptyIgnored = "Empty note ignored"
)

// Form 表单原始输入，四个字段都是未经解析的文本
type Form struct {
	Source           string `json:"source"`
	Amount           string `json:"amount"`
	Date             string `json:"date"`
	PaymentFrequency string `json:"payment_frequency"`
}

// ValidationError 可由用户修正的输入错误，Message 直接展示给用户
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// amountLimit 金额列为 decimal(10,2)，整数部分最多 8 位
var amountLimit = decimal.New(1, 8)

type validatedForm struct {
	source    string
	amount    decimal.Decimal
	date      time.Time
	frequency models.PaymentFrequency
}

// validate 按固定顺序校验，遇到第一个错误即返回
func (f Form) validate() (validatedForm, error) {
	var out validatedForm

	if strings.TrimSpace(f.Source) == "" {
		return out, &ValidationError{Field: "source", Message: MsgFillAllFields}
	}
	amountText := strings.TrimSpace(f.Amount)
	if amountText == "" {
		return out, &ValidationError{Field: "amount", Message: MsgFillAllFields}
	}
	dateText := strings.TrimSpace(f.Date)
	if dateText == "" {
		return out, &ValidationError{Field: "date", Message: MsgFillAllFields}
	}
	date, err := time.ParseInLocation(models.DateLayout, dateText, time.Local)
	if err != nil {
		return out, &ValidationError{Field: "date", Message: MsgInvalidDate}
	}
	frequency := models.PaymentFrequency(strings.TrimSpace(f.PaymentFrequency))
	if frequency == "" {
		return out, &ValidationError{Field: "payment_frequency", Message: MsgFillAllFields}
	}
	if !frequency.Valid() {
		return out, &ValidationError{Field: "payment_frequency", Message: MsgInvalidFrequency}
	}

	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return out, &ValidationError{Field: "amount", Message: MsgAmountNotNumber}
	}
	// 按货币精度（两位小数）四舍五入后再判断，保证入库金额严格大于 0
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return out, &ValidationError{Field: "amount", Message: MsgAmountNotPositive}
	}
	if amount.GreaterThanOrEqual(amountLimit) {
		return out, &ValidationError{Field: "amount", Message: MsgAmountTooLarge}
	}

	out.source = f.Source
	out.amount = amount
	out.date = date
	out.frequency = frequency
	return out, nil
}

// FormFromIncome 用已存储的记录回填表单
func FormFromIncome(in models.Income) Form {
	return Form{
		Source:           in.Source,
		Amount:           in.Amount.StringFixed(2),
		Date:             in.Date.Format(models.DateLayout),
		PaymentFrequency: string(in.PaymentFrequency),
	}
}
