package models

import "time"

// ClientState holds one persisted client snapshot (cart, wishlist, auth) keyed by storage name.
type ClientState struct {
	StateKey  string    `gorm:"column:state_key;primaryKey;size:255"`
	Payload   string    `gorm:"column:payload;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (ClientState) TableName() string {
	return "client_state"
}
