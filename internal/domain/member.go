package domain

import "time"

// Member - the slice of the account profile this engine owns: current
// tier, emotion selector and the resource bookkeeping the quotas
// constrain. Friend/best-friend edges, galleries and pictures live in
// their own tables.
type Member struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Tier         Tier      `db:"tier" json:"tier"`
	Emotion      Emotion   `db:"emotion" json:"emotion"`
	AboutMeSet   bool      `db:"about_me_set" json:"about_me_set"`
	GalleryCount int       `db:"gallery_count" json:"gallery_count"`
	PictureBytes int64     `db:"picture_bytes" json:"picture_bytes"`
	IsAdmin      bool      `db:"is_admin" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
