package models

import "time"

// TodaysMood последняя отметка настроения за сегодня.
type TodaysMood struct {
	Mood     *int       `json:"mood"`
	Notes    *string    `json:"notes"`
	LoggedAt *time.Time `json:"logged_at"`
}

// HabitSummary прогресс привычки для дашборда.
type HabitSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Progress   int     `json:"progress"`
	Goal       int     `json:"goal"`
	Unit       string  `json:"unit"`
	Percentage float64 `json:"percentage"`
	Completed  bool    `json:"completed"`
}

// DashboardStats счётчики дашборда.
type DashboardStats struct {
	TotalEntries         int `json:"total_entries"`
	ActiveHabits         int `json:"active_habits"`
	CompletedHabitsToday int `json:"completed_habits_today"`
}

// DashboardSummary сводка для главного экрана.
type DashboardSummary struct {
	MoodTrends    []MoodTrendPoint `json:"mood_trends"`
	TodaysMood    TodaysMood       `json:"todays_mood"`
	RecentEntries []Journal        `json:"recent_entries"`
	HabitProgress []HabitSummary   `json:"habit_progress"`
	Stats         DashboardStats   `json:"stats"`
	IsPremium     bool             `json:"is_premium"`
}
