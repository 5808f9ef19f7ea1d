package domain

import "time"

// Gallery - a member photo gallery. Deleting a gallery cascades to its
// pictures.
type Gallery struct {
	ID        int64     `db:"id" json:"id"`
	MemberID  int64     `db:"member_id" json:"member_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Picture - a stored photo with its byte weight.
type Picture struct {
	ID        int64     `db:"id" json:"id"`
	GalleryID int64     `db:"gallery_id" json:"gallery_id"`
	MemberID  int64     `db:"member_id" json:"member_id"`
	Title     string    `db:"title" json:"title"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GuestbookEntry - a message left in another member's guestbook.
type GuestbookEntry struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PictureComment - a comment under a picture.
type PictureComment struct {
	ID        int64     `db:"id" json:"id"`
	PictureID int64     `db:"picture_id" json:"picture_id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Visit - one profile view, newest first when listed.
type Visit struct {
	ID        int64     `db:"id" json:"id"`
	MemberID  int64     `db:"member_id" json:"member_id"`
	VisitorID int64     `db:"visitor_id" json:"visitor_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProfilePictureRequest - a profile photo waiting for moderation.
// Accepting one triggers the constant profile_photo award.
type ProfilePictureRequest struct {
	ID              int64      `db:"id" json:"id"`
	MemberID        int64      `db:"member_id" json:"member_id"`
	IsAccepted      bool       `db:"is_accepted" json:"is_accepted"`
	IsRejected      bool       `db:"is_rejected" json:"is_rejected"`
	ExaminationDate *time.Time `db:"examination_date" json:"examination_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
