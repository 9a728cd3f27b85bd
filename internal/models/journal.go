package models

import "time"

// Тональность записи дневника.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

// Journal запись дневника.
type Journal struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalPage страница записей дневника.
type JournalPage struct {
	Entries     []Journal `json:"entries"`
	Total       int       `json:"total"`
	Pages       int       `json:"pages"`
	CurrentPage int       `json:"current_page"`
}
