package models

import "time"

// Operator is a scan-station account: the admin running the event or a
// volunteer helping at the door. The ID string (username) is what gets
// stamped into MarkedBy.
type Operator struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:60;not null"`
	Password  string    `json:"-" gorm:"not null"`            // bcrypt hash
	Role      string    `json:"role" gorm:"size:20;not null"` // "admin" | "volunteer"
	Name      string    `json:"name" gorm:"size:120"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
