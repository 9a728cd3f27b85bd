package models

import "time"

// AnonymousAuthor подставляется, если автор не указан.
const AnonymousAuthor = "Anonymous"

// MaxPostLength максимальная длина сообщения в символах.
const MaxPostLength = 1000

// CommunityPost сообщение на доске сообщества.
type CommunityPost struct {
	ID        int64     `json:"id"`
	UserID    *string   `json:"-"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeResult состояние лайка после переключения.
type LikeResult struct {
	PostID int64 `json:"post_id"`
	Liked  bool  `json:"liked"`
	Likes  int   `json:"likes"`
}
