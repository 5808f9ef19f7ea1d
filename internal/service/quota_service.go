package service

import (
	"context"
	"errors"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrQuotaExceeded   = errors.New("tier quota exceeded")
	ErrNotFriends      = errors.New("friend edge does not exist")
	ErrGalleryNotFound = errors.New("gallery not found")
)

// QuotaService owns every operation bounded by the tier quotas: tier
// changes with downgrade trims, and the quota-gated creates (friends,
// best friends, galleries, pictures). Each one runs in a transaction
// holding the member's row lock, so a quota check and the write it
// guards cannot interleave with another add or with a trim.
type QuotaService struct {
	db      *pgxpool.Pool
	catalog *domain.TierCatalog

	members   *repository.MemberRepository
	friends   *repository.FriendRepository
	galleries *repository.GalleryRepository
}

func NewQuotaService(db *pgxpool.Pool, catalog *domain.TierCatalog) *QuotaService {
	return &QuotaService{
		db:        db,
		catalog:   catalog,
		members:   repository.NewMemberRepository(db),
		friends:   repository.NewFriendRepository(db),
		galleries: repository.NewGalleryRepository(db),
	}
}

// ChangeTier moves the member to the target tier. The whole move, trim
// included, is one transaction under the member's row lock, so a
// concurrent friend add either lands before the trim (and is subject to
// it) or after (against the new quotas). Same-tier calls are no-ops.
func (s *QuotaService) ChangeTier(ctx context.Context, memberID int64, target domain.Tier) (*domain.TrimReport, error) {
	if !s.catalog.Known(target) {
		return nil, domain.ErrUnknownTier
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	report := &domain.TrimReport{}
	if member.Tier == target {
		return report, nil
	}

	if s.catalog.Rank(target) < s.catalog.Rank(member.Tier) {
		if err := s.trimToFit(ctx, tx, member, target, report); err != nil {
			return nil, err
		}
	}

	if err := s.members.UpdateTierWithTx(ctx, tx, memberID, target); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	tierChanges.WithLabelValues(member.Tier.String(), target.String()).Inc()
	if !report.Empty() {
		logger.Info("downgrade trim applied",
			"member_id", memberID,
			"from", member.Tier.String(),
			"to", target.String(),
			"friends_removed", len(report.FriendsRemoved),
			"best_friends_removed", len(report.BestFriendsRemoved),
			"galleries_removed", len(report.GalleriesRemoved),
			"pictures_removed", len(report.PicturesRemoved),
			"bytes_freed", report.BytesFreed)
	}
	return report, nil
}

// trimToFit cuts the member's holdings down to the target quotas.
// Best friends go before friends: removing a friend cascades out of the
// best-friends table, so the order keeps both removal lists accurate
// and the subset invariant holds at every step.
func (s *QuotaService) trimToFit(ctx context.Context, tx pgx.Tx, member *domain.Member, target domain.Tier, report *domain.TrimReport) error {
	quotas := s.catalog.LimitsFor(target)

	bestIDs, err := s.friends.BestFriendIDsNewestFirstWithTx(ctx, tx, member.ID)
	if err != nil {
		return err
	}
	if excess := domain.ExcessNewestFirst(bestIDs, quotas.MaxBestFriends); len(excess) > 0 {
		if err := s.friends.RemoveBestFriendsWithTx(ctx, tx, member.ID, excess); err != nil {
			return err
		}
		report.BestFriendsRemoved = excess
	}

	friendIDs, err := s.friends.FriendIDsNewestFirstWithTx(ctx, tx, member.ID)
	if err != nil {
		return err
	}
	if excess := domain.ExcessNewestFirst(friendIDs, quotas.MaxFriends); len(excess) > 0 {
		if err := s.friends.RemoveFriendsWithTx(ctx, tx, member.ID, excess); err != nil {
			return err
		}
		report.FriendsRemoved = excess

		// The cascade may have taken best friends with it; re-read so
		// the report reflects what is actually gone.
		remaining, err := s.friends.BestFriendIDsNewestFirstWithTx(ctx, tx, member.ID)
		if err != nil {
			return err
		}
		report.BestFriendsRemoved = appendCascaded(report.BestFriendsRemoved, bestIDs, remaining)
	}

	galleryCount := member.GalleryCount
	pictureBytes := member.PictureBytes

	galleryIDs, err := s.galleries.GalleryIDsNewestFirstWithTx(ctx, tx, member.ID)
	if err != nil {
		return err
	}
	if excess := domain.ExcessNewestFirst(galleryIDs, quotas.MaxGalleryCount); len(excess) > 0 {
		_, bytes, err := s.galleries.DeleteGalleriesWithTx(ctx, tx, member.ID, excess)
		if err != nil {
			return err
		}
		report.GalleriesRemoved = excess
		report.BytesFreed += bytes
		galleryCount -= len(excess)
		pictureBytes -= bytes
	}

	if pictureBytes > quotas.MaxStoredPictureBytes {
		pictures, err := s.galleries.PicturesNewestFirstWithTx(ctx, tx, member.ID)
		if err != nil {
			return err
		}
		evict, freed := domain.PlanByteTrim(pictures, pictureBytes, quotas.MaxStoredPictureBytes)
		if len(evict) > 0 {
			if err := s.galleries.DeletePicturesWithTx(ctx, tx, member.ID, evict); err != nil {
				return err
			}
			report.PicturesRemoved = evict
			report.BytesFreed += freed
			pictureBytes -= freed
		}
	}

	if err := s.members.AdjustResourcesWithTx(ctx, tx, member.ID,
		galleryCount-member.GalleryCount, pictureBytes-member.PictureBytes); err != nil {
		return err
	}

	// The old tier's emotions may not exist at the target rank.
	if !domain.EmotionAllowed(s.catalog, target, member.Emotion) {
		if err := s.members.SetEmotionWithTx(ctx, tx, member.ID, domain.DefaultEmotion); err != nil {
			return err
		}
		report.EmotionReset = true
	}

	return nil
}

// AddFriend creates a friend edge under the member lock. The count and
// the insert share the transaction, so two concurrent adds serialize
// and the quota holds. Returns false when the edge already exists.
func (s *QuotaService) AddFriend(ctx context.Context, memberID, friendID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrMemberNotFound
		}
		return false, err
	}

	exists, err := s.friends.IsFriendWithTx(ctx, tx, memberID, friendID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	count, err := s.friends.CountFriendsWithTx(ctx, tx, memberID)
	if err != nil {
		return false, err
	}
	if count >= s.catalog.LimitsFor(member.Tier).MaxFriends {
		return false, ErrQuotaExceeded
	}

	if err := s.friends.AddFriendWithTx(ctx, tx, memberID, friendID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// AddBestFriend promotes an existing friend to best friend, under the
// same lock discipline. The friend edge must already exist.
func (s *QuotaService) AddBestFriend(ctx context.Context, memberID, friendID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrMemberNotFound
		}
		return false, err
	}

	already, err := s.friends.IsBestFriendWithTx(ctx, tx, memberID, friendID)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	isFriend, err := s.friends.IsFriendWithTx(ctx, tx, memberID, friendID)
	if err != nil {
		return false, err
	}
	if !isFriend {
		return false, ErrNotFriends
	}

	count, err := s.friends.CountBestFriendsWithTx(ctx, tx, memberID)
	if err != nil {
		return false, err
	}
	if count >= s.catalog.LimitsFor(member.Tier).MaxBestFriends {
		return false, ErrQuotaExceeded
	}

	if err := s.friends.AddBestFriendWithTx(ctx, tx, memberID, friendID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// CreateGallery opens a gallery if the locked member row still has
// room, and bumps the gallery counter in the same transaction.
func (s *QuotaService) CreateGallery(ctx context.Context, memberID int64, name string) (*domain.Gallery, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if member.GalleryCount >= s.catalog.LimitsFor(member.Tier).MaxGalleryCount {
		return nil, ErrQuotaExceeded
	}

	gallery := &domain.Gallery{MemberID: memberID, Name: name}
	if err := s.galleries.CreateWithTx(ctx, tx, gallery); err != nil {
		return nil, err
	}
	if err := s.members.AdjustResourcesWithTx(ctx, tx, memberID, 1, 0); err != nil {
		return nil, err
	}
	return gallery, tx.Commit(ctx)
}

// AddPicture stores picture metadata into one of the member's own
// galleries if its byte weight still fits the stored-bytes quota.
// There is no partial acceptance.
func (s *QuotaService) AddPicture(ctx context.Context, memberID, galleryID int64, title string, sizeBytes int64) (*domain.Picture, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	owned, err := s.galleries.OwnedWithTx(ctx, tx, galleryID, memberID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrGalleryNotFound
	}

	if member.PictureBytes+sizeBytes > s.catalog.LimitsFor(member.Tier).MaxStoredPictureBytes {
		return nil, ErrQuotaExceeded
	}

	picture := &domain.Picture{
		GalleryID: galleryID,
		MemberID:  memberID,
		Title:     title,
		SizeBytes: sizeBytes,
	}
	if err := s.galleries.AddPictureWithTx(ctx, tx, picture); err != nil {
		return nil, err
	}
	if err := s.members.AdjustResourcesWithTx(ctx, tx, memberID, 0, sizeBytes); err != nil {
		return nil, err
	}
	return picture, tx.Commit(ctx)
}

// appendCascaded adds the best-friend ids that vanished via the friends
// cascade rather than the direct best-friends trim.
func appendCascaded(direct, before, after []int64) []int64 {
	kept := make(map[int64]struct{}, len(after))
	for _, id := range after {
		kept[id] = struct{}{}
	}
	removed := make(map[int64]struct{}, len(direct))
	for _, id := range direct {
		removed[id] = struct{}{}
	}
	out := direct
	for _, id := range before {
		if _, ok := kept[id]; ok {
			continue
		}
		if _, ok := removed[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
