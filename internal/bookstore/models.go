// Package bookstore is a small REST API exercising every restext
// component: conditional books with gated writes, users with groups
// nested under them, and a cached greeting.
package bookstore

import (
	"fmt"

	"gorm.io/gorm"
)

// Book rows change revision on every write.
type Book struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Revision int    `gorm:"not null;default:1" json:"revision"`
}

// User owns groups.
type User struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

// Group belongs to one user.
type Group struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `json:"name"`
	UserID uint   `gorm:"index" json:"user"`
}

// Migrate creates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Book{}, &User{}, &Group{}); err != nil {
		return fmt.Errorf("migrate bookstore: %w", err)
	}
	return nil
}

// Seed inserts the demo rows unless books already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Book{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		books := []Book{
			{ID: 1, Title: "Dune", Author: "Frank Herbert", Revision: 1},
			{ID: 2, Title: "Neuromancer", Author: "William Gibson", Revision: 1},
			{ID: 3, Title: "The Dispossessed", Author: "Ursula K. Le Guin", Revision: 1},
		}
		users := []User{{ID: 41, Name: "bob"}, {ID: 42, Name: "alice"}}
		groups := []Group{
			{ID: 5, Name: "readers", UserID: 41},
			{ID: 7, Name: "editors", UserID: 42},
			{ID: 8, Name: "reviewers", UserID: 42},
		}

		for _, rows := range []any{&books, &users, &groups} {
			if err := tx.Create(rows).Error; err != nil {
				return fmt.Errorf("seed bookstore: %w", err)
			}
		}
		return nil
	})
}
