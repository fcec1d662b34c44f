package users

import "time"

// User captures a registered account. The bcrypt hash never leaves this package.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null"`
	Name         string    `gorm:"column:name;size:320;not null"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:190;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

// Profile is the public projection of a user returned by auth endpoints and
// embedded in comment author snapshots.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile projects the account into its public shape.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
