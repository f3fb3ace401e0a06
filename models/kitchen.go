package models

import "time"

// KitchenCodeLength is the number of characters in a kitchen pairing code.
const KitchenCodeLength = 6

// KitchenCodeAlphabet is the character set pairing codes are drawn from.
const KitchenCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// KitchenAccount binds a cocina user to the pairing code waiters and cashiers link with.
type KitchenAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Code      string    `gorm:"type:varchar(6);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(100)" json:"name,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// PairingLink scopes a waiter or cashier to one kitchen. A staff user has at most one.
type PairingLink struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StaffUserID uint      `gorm:"uniqueIndex;not null" json:"staff_user_id"`
	KitchenCode string    `gorm:"type:varchar(6);index;not null" json:"kitchen_code"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
