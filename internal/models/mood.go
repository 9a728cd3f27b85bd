package models

import "time"

// Границы шкалы настроения.
const (
	MoodMin = 1
	MoodMax = 5
)

// Mood отметка настроения.
type Mood struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Mood      int       `json:"mood"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodStats агрегат настроения за период.
type MoodStats struct {
	AverageMood  float64        `json:"average_mood"`
	Distribution map[string]int `json:"mood_distribution"`
	PeriodDays   int            `json:"period_days"`
}

// MoodTrendPoint среднее настроение за день.
type MoodTrendPoint struct {
	Date string  `json:"date"`
	Mood float64 `json:"mood"`
}
