package todo

import (
	"time"

	"github.com/lib/pq"
)

type Category struct {
	ID        uint64    `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// Task.Tags is stored as a Postgres array literal in a text column so the same
// schema works on SQLite.
type Task struct {
	ID         uint64         `gorm:"primaryKey"`
	Title      string         `gorm:"type:text;not null"`
	CategoryID *uint64        `gorm:"index"`
	DueDate    *string        `gorm:"type:varchar(10);index"`
	Completed  bool           `gorm:"not null;default:false"`
	Tags       pq.StringArray `gorm:"type:text;not null;default:'{}'"`
	CreatedAt  time.Time      `gorm:"not null"`
}
