package comments

import "time"

// Comment is a user remark attached to a location record. The author's id and
// display name are snapshotted at creation so listing never joins users.
type Comment struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	LocationID  string    `gorm:"column:location_id;size:190;not null;index:idx_comments_location_created,priority:1"`
	Body        string    `gorm:"column:body;type:text;not null"`
	AuthorID    string    `gorm:"column:author_id;size:190;not null"`
	AuthorName  string    `gorm:"column:author_name;size:320;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index:idx_comments_location_created,priority:2"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Comment) TableName() string {
	return "comments"
}
