package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CronSchedule is a named cron expression kept in the catalog.
type CronSchedule struct {
	ID string `gorm:"primaryKey;type:text"`

	Name string `gorm:"type:text;not null;uniqueIndex"`

	Minute  string `gorm:"type:text;not null;default:'*'"`
	Hour    string `gorm:"type:text;not null;default:'*'"`
	Day     string `gorm:"type:text;not null;default:'*'"`
	Month   string `gorm:"type:text;not null;default:'*'"`
	Weekday string `gorm:"type:text;not null;default:'*'"`

	// open|closed
	Policy string `gorm:"type:text;not null;default:'open'"`

	// sha256 over the canonical JSON of the five fields.
	Fingerprint string `gorm:"type:text;index"`

	Note string `gorm:"type:text"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

func (s *CronSchedule) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Fields returns the five field tokens in positional order.
func (s CronSchedule) Fields() [5]string {
	return [5]string{s.Minute, s.Hour, s.Day, s.Month, s.Weekday}
}

// Line renders the schedule as a single whitespace-separated cron line.
func (s CronSchedule) Line() string {
	f := s.Fields()
	return strings.Join(f[:], " ")
}
