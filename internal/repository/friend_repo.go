package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendRepository struct {
	db *pgxpool.Pool
}

func NewFriendRepository(db *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{db: db}
}

// AddFriendWithTx inserts a friend edge. Quota checks happen in the
// service under the member lock; this only writes.
func (r *FriendRepository) AddFriendWithTx(ctx context.Context, tx pgx.Tx, memberID, friendID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO friends (member_id, friend_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		memberID, friendID)
	return err
}

func (r *FriendRepository) AddBestFriendWithTx(ctx context.Context, tx pgx.Tx, memberID, friendID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO best_friends (member_id, friend_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		memberID, friendID)
	return err
}

func idList(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FriendIDsNewestFirstWithTx lists friend ids ordered by when the edge
// was added, newest first. This ordering is the documented eviction
// order for downgrade trims.
func (r *FriendRepository) FriendIDsNewestFirstWithTx(ctx context.Context, tx pgx.Tx, memberID int64) ([]int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT friend_id FROM friends
		 WHERE member_id = $1
		 ORDER BY created_at DESC, friend_id DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	return idList(rows)
}

func (r *FriendRepository) BestFriendIDsNewestFirstWithTx(ctx context.Context, tx pgx.Tx, memberID int64) ([]int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT friend_id FROM best_friends
		 WHERE member_id = $1
		 ORDER BY created_at DESC, friend_id DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	return idList(rows)
}

// RemoveFriendsWithTx deletes friend edges; the composite FK on
// best_friends cascades so the subset invariant cannot break.
func (r *FriendRepository) RemoveFriendsWithTx(ctx context.Context, tx pgx.Tx, memberID int64, friendIDs []int64) error {
	if len(friendIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`DELETE FROM friends WHERE member_id = $1 AND friend_id = ANY($2)`,
		memberID, friendIDs)
	return err
}

func (r *FriendRepository) RemoveBestFriendsWithTx(ctx context.Context, tx pgx.Tx, memberID int64, friendIDs []int64) error {
	if len(friendIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`DELETE FROM best_friends WHERE member_id = $1 AND friend_id = ANY($2)`,
		memberID, friendIDs)
	return err
}

// IsFriendWithTx reports whether the edge exists. Best-friend
// promotion requires it; the composite FK is the backstop.
func (r *FriendRepository) IsFriendWithTx(ctx context.Context, tx pgx.Tx, memberID, friendID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM friends WHERE member_id = $1 AND friend_id = $2)`,
		memberID, friendID).Scan(&exists)
	return exists, err
}

func (r *FriendRepository) IsBestFriendWithTx(ctx context.Context, tx pgx.Tx, memberID, friendID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM best_friends WHERE member_id = $1 AND friend_id = $2)`,
		memberID, friendID).Scan(&exists)
	return exists, err
}

func (r *FriendRepository) CountFriendsWithTx(ctx context.Context, tx pgx.Tx, memberID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM friends WHERE member_id = $1`, memberID).Scan(&n)
	return n, err
}

func (r *FriendRepository) CountBestFriendsWithTx(ctx context.Context, tx pgx.Tx, memberID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM best_friends WHERE member_id = $1`, memberID).Scan(&n)
	return n, err
}

func (r *FriendRepository) CountFriends(ctx context.Context, memberID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM friends WHERE member_id = $1`, memberID).Scan(&n)
	return n, err
}

func (r *FriendRepository) CountBestFriends(ctx context.Context, memberID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM best_friends WHERE member_id = $1`, memberID).Scan(&n)
	return n, err
}
