package models

import "gorm.io/gorm"

// Template is a visual layout a visiting card renders with.
type Template struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	Name     string         `gorm:"size:100;not null" json:"name"`
	FilePath string         `gorm:"size:200" json:"file_path"`
	Cards    []VisitingCard `json:"-"`
}

// SeedTemplates is the default template catalog installed on first boot.
var SeedTemplates = []Template{
	{ID: 1, Name: "Classic Blue", FilePath: "/templates/classic-blue.html"},
	{ID: 2, Name: "Minimal White", FilePath: "/templates/minimal-white.html"},
	{ID: 3, Name: "Modern Dark", FilePath: "/templates/modern-dark.html"},
}

// EnsureTemplates installs any missing catalog entries. Existing rows are
// left untouched so operators can rename templates.
func EnsureTemplates(db *gorm.DB) error {
	for _, tpl := range SeedTemplates {
		var existing Template
		err := db.First(&existing, tpl.ID).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&tpl).Error; err != nil {
			return err
		}
	}
	return nil
}
