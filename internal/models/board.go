package models

import "time"

type Board struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Board) TableName() string { return "boards" }

// Post carries denormalized ViewCount/LikeCount columns; they are a cache
// updated inside the mutating transaction, read paths that need an exact
// number recount from the dependent tables.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BoardID      uint      `gorm:"index;not null" json:"board_id"`
	UserID       string    `gorm:"index;size:100;not null" json:"user_id"`
	Title        string    `gorm:"size:300;not null" json:"title"`
	Content      string    `gorm:"type:text" json:"content"`
	IsSecret     bool      `gorm:"default:false" json:"is_secret"`
	PasswordHash string    `gorm:"size:255" json:"-"` // set only when IsSecret
	ViewCount    int       `gorm:"default:0" json:"view_count"`
	LikeCount    int       `gorm:"default:0" json:"like_count"`
	IsDeleted    bool      `gorm:"default:false;index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// PostLike existence is the "liked" state; the composite unique index is the
// authority under concurrent toggles.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_post_like_pair;not null" json:"post_id"`
	UserID    string    `gorm:"uniqueIndex:idx_post_like_pair;size:100;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string { return "post_likes" }

type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_bookmark_pair;not null" json:"post_id"`
	UserID    string    `gorm:"uniqueIndex:idx_bookmark_pair;size:100;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Bookmark) TableName() string { return "bookmarks" }

// PostView deduplicates view counting to one row per (post, actor, UTC day).
// ActorKey is the user's external id when authenticated, otherwise the client
// IP. ViewDate is the UTC calendar date in YYYY-MM-DD form so the composite
// unique index behaves identically across sqlite, mysql and postgres.
type PostView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_post_view_day;not null" json:"post_id"`
	ActorKey  string    `gorm:"uniqueIndex:idx_post_view_day;size:100;not null" json:"actor_key"`
	ViewDate  string    `gorm:"uniqueIndex:idx_post_view_day;size:10;not null" json:"view_date"`
	UserAgent string    `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostView) TableName() string { return "post_views" }
