package models

// Notification is a per-user message shown in the UI bell menu.
type Notification struct {
	BaseModel
	UserID  string `gorm:"size:36;index;not null" json:"userId"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"isRead"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
