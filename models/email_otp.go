package models

import "time"

// OTP 用途
const (
	OTPTypeRegister       = "register"
	OTPTypeForgotPassword = "forgot_password"
)

// EmailOTP 邮箱验证码
type EmailOTP struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:100;not null;index"`
	Code      string    `json:"-" gorm:"size:10;not null"`
	OTPType   string    `json:"otp_type" gorm:"size:20;not null"` // register / forgot_password
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	IsUsed    bool      `json:"is_used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (EmailOTP) TableName() string {
	return "email_otps"
}

// IsExpired 验证码是否已过期
func (o *EmailOTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}
