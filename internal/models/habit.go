package models

import "time"

// Периодичность привычки.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Habit отслеживаемая привычка.
type Habit struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Frequency   string    `json:"frequency"`
	Goal        int       `json:"goal"`
	Unit        string    `json:"unit"`
	CreatedAt   time.Time `json:"created_at"`
}

// HabitProgress привычка с прогрессом за сегодня.
type HabitProgress struct {
	Habit
	TodayProgress  int  `json:"today_progress"`
	CompletedToday bool `json:"completed_today"`
}

// HabitLog отметка выполнения привычки.
type HabitLog struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	HabitID   int64     `json:"habit_id"`
	Value     int       `json:"value"`
	Completed bool      `json:"completed"`
	LoggedAt  time.Time `json:"logged_at"`
}
