// File: /models/compilation.go
package models

type Compilation struct {
	ID     uint    `json:"id" gorm:"primaryKey"`
	Title  string  `json:"title" gorm:"uniqueIndex;not null;size:50"`
	Pinned bool    `json:"pinned" gorm:"not null;default:false;index"`
	Events []Event `json:"events" gorm:"many2many:compilation_events"`
}
