package locations

import "time"

// Location is a backend record for a third-party place. The place's external
// identifier is the primary key, which is what makes client-side get-or-create
// idempotent: a second create for the same place collides instead of duplicating.
type Location struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	Name      string    `gorm:"column:name;size:320;not null"`
	Address   string    `gorm:"column:address;size:512;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Location) TableName() string {
	return "locations"
}
