package integration

import (
	"context"
	"testing"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// smallCatalog keeps the integration fixtures tiny: two tiers with
// single-digit quotas instead of the production table.
func smallCatalog(t *testing.T) *domain.TierCatalog {
	t.Helper()
	catalog, err := domain.NewTierCatalog(map[domain.Tier]domain.TierSpec{
		domain.TierBasic: {
			Power:      0,
			Multiplier: 1,
			Quotas: domain.QuotaSet{
				MaxFriends:               3,
				MaxBestFriends:           0,
				MaxOwnVisitorsShown:      5,
				MaxStrangerVisitorsShown: 3,
				MaxGalleryCount:          1,
				MaxStoredPictureBytes:    1000,
			},
		},
		domain.TierPro: {
			Power:      1,
			Multiplier: 2,
			Quotas: domain.QuotaSet{
				MaxFriends:               5,
				MaxBestFriends:           2,
				MaxOwnVisitorsShown:      10,
				MaxStrangerVisitorsShown: 5,
				MaxGalleryCount:          3,
				MaxStoredPictureBytes:    5000,
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func addFriends(t *testing.T, db *pgxpool.Pool, svc *service.QuotaService, m *domain.Member, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		f := createMember(t, db, domain.TierBasic)
		if _, err := svc.AddFriend(context.Background(), m.ID, f.ID); err != nil {
			t.Fatalf("add friend: %v", err)
		}
		ids = append(ids, f.ID)
	}
	return ids
}

func TestQuotaService_DowngradeTrimsFriends(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierPro)
	friendIDs := addFriends(t, db, svc, m, 5)

	friendRepo := repository.NewFriendRepository(db)
	// promote the two oldest friends; Pro allows 2 best friends
	for _, id := range friendIDs[:2] {
		if _, err := svc.AddBestFriend(ctx, m.ID, id); err != nil {
			t.Fatalf("add best friend: %v", err)
		}
	}

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierBasic)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}

	// Basic allows 3 friends and 0 best friends. The two newest friend
	// edges go; the surviving best friends get trimmed to zero.
	if got, err := friendRepo.CountFriends(ctx, m.ID); err != nil || got != 3 {
		t.Fatalf("expected 3 friends, got %d (err %v)", got, err)
	}
	if got, err := friendRepo.CountBestFriends(ctx, m.ID); err != nil || got != 0 {
		t.Fatalf("expected 0 best friends, got %d (err %v)", got, err)
	}
	if len(report.FriendsRemoved) != 2 {
		t.Fatalf("expected 2 friends removed in report, got %v", report.FriendsRemoved)
	}
	if len(report.BestFriendsRemoved) != 2 {
		t.Fatalf("expected 2 best friends removed in report, got %v", report.BestFriendsRemoved)
	}

	member, err := repository.NewMemberRepository(db).GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.Tier != domain.TierBasic {
		t.Fatalf("expected tier B, got %s", member.Tier)
	}
}

func TestQuotaService_DowngradeTrimsGalleriesAndBytes(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierPro)

	// 3 galleries with one 800-byte picture each: fine at Pro
	// (3 galleries / 5000 bytes), over both Basic quotas.
	for i := 0; i < 3; i++ {
		g, err := svc.CreateGallery(ctx, m.ID, "g")
		if err != nil {
			t.Fatalf("create gallery: %v", err)
		}
		if _, err := svc.AddPicture(ctx, m.ID, g.ID, "p", 800); err != nil {
			t.Fatalf("add picture: %v", err)
		}
	}

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierBasic)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}

	member, err := repository.NewMemberRepository(db).GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("member: %v", err)
	}

	// Two newest galleries dropped (cascading their pictures), and the
	// remaining 800 bytes fit the 1000-byte cap with no picture trim.
	if member.GalleryCount != 1 {
		t.Fatalf("expected 1 gallery, got %d", member.GalleryCount)
	}
	if member.PictureBytes != 800 {
		t.Fatalf("expected 800 bytes, got %d", member.PictureBytes)
	}
	if len(report.GalleriesRemoved) != 2 {
		t.Fatalf("expected 2 galleries removed, got %v", report.GalleriesRemoved)
	}
	if report.BytesFreed != 1600 {
		t.Fatalf("expected 1600 bytes freed, got %d", report.BytesFreed)
	}
}

func TestQuotaService_DowngradeByteTrimEvictsNewest(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierPro)

	g, err := svc.CreateGallery(ctx, m.ID, "g")
	if err != nil {
		t.Fatalf("create gallery: %v", err)
	}

	// 4 x 400 bytes = 1600, cap at Basic is 1000: the two newest go.
	var pics []*domain.Picture
	for i := 0; i < 4; i++ {
		p, err := svc.AddPicture(ctx, m.ID, g.ID, "p", 400)
		if err != nil {
			t.Fatalf("add picture: %v", err)
		}
		pics = append(pics, p)
	}

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierBasic)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}

	if len(report.PicturesRemoved) != 2 {
		t.Fatalf("expected 2 pictures removed, got %v", report.PicturesRemoved)
	}
	removed := map[int64]bool{}
	for _, id := range report.PicturesRemoved {
		removed[id] = true
	}
	if !removed[pics[3].ID] || !removed[pics[2].ID] {
		t.Fatalf("expected the two newest pictures evicted, got %v", report.PicturesRemoved)
	}

	member, err := repository.NewMemberRepository(db).GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.PictureBytes != 800 {
		t.Fatalf("expected 800 bytes left, got %d", member.PictureBytes)
	}
}

func TestQuotaService_UpgradeNeverTrims(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierBasic)
	addFriends(t, db, svc, m, 3)

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierPro)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected empty report on upgrade, got %+v", report)
	}

	friendRepo := repository.NewFriendRepository(db)
	if got, _ := friendRepo.CountFriends(ctx, m.ID); got != 3 {
		t.Fatalf("expected 3 friends untouched, got %d", got)
	}
}

func TestQuotaService_DowngradeResetsEmotion(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierPro)
	memberRepo := repository.NewMemberRepository(db)
	if err := memberRepo.SetEmotion(ctx, m.ID, domain.EmotionJealousy); err != nil {
		t.Fatalf("set emotion: %v", err)
	}

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierBasic)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if !report.EmotionReset {
		t.Fatalf("expected emotion reset in report")
	}

	member, err := memberRepo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.Emotion != domain.DefaultEmotion {
		t.Fatalf("expected default emotion, got %s", member.Emotion)
	}
}

func TestQuotaService_SameTierIsNoOp(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierBasic)
	addFriends(t, db, svc, m, 3)

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierBasic)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected no-op, got %+v", report)
	}
}

// cascadeCatalog keeps the best-friend quota identical across tiers,
// so a downgrade never trims best friends directly and any removal can
// only come through the friends cascade.
func cascadeCatalog(t *testing.T) *domain.TierCatalog {
	t.Helper()
	catalog, err := domain.NewTierCatalog(map[domain.Tier]domain.TierSpec{
		domain.TierBasic: {
			Power:      0,
			Multiplier: 1,
			Quotas: domain.QuotaSet{
				MaxFriends:               2,
				MaxBestFriends:           2,
				MaxOwnVisitorsShown:      5,
				MaxStrangerVisitorsShown: 3,
				MaxGalleryCount:          1,
				MaxStoredPictureBytes:    1000,
			},
		},
		domain.TierPro: {
			Power:      1,
			Multiplier: 2,
			Quotas: domain.QuotaSet{
				MaxFriends:               5,
				MaxBestFriends:           2,
				MaxOwnVisitorsShown:      10,
				MaxStrangerVisitorsShown: 5,
				MaxGalleryCount:          3,
				MaxStoredPictureBytes:    5000,
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func TestQuotaService_FriendTrimCascadesBestFriends(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, cascadeCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierPro)
	friendIDs := addFriends(t, db, svc, m, 4)

	// promote the two newest friends; both edges fit the best-friend
	// quota at either tier
	for _, id := range friendIDs[2:] {
		if _, err := svc.AddBestFriend(ctx, m.ID, id); err != nil {
			t.Fatalf("add best friend: %v", err)
		}
	}

	report, err := svc.ChangeTier(ctx, m.ID, domain.TierBasic)
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}

	// Basic still allows 2 best friends, so nothing is trimmed there
	// directly. The friend trim removes the two newest edges, and both
	// best-friend memberships must go with them.
	if len(report.FriendsRemoved) != 2 {
		t.Fatalf("expected 2 friends removed, got %v", report.FriendsRemoved)
	}
	removed := map[int64]bool{}
	for _, id := range report.BestFriendsRemoved {
		removed[id] = true
	}
	if len(report.BestFriendsRemoved) != 2 || !removed[friendIDs[2]] || !removed[friendIDs[3]] {
		t.Fatalf("expected cascaded best friends %v in report, got %v",
			friendIDs[2:], report.BestFriendsRemoved)
	}

	friendRepo := repository.NewFriendRepository(db)
	if got, _ := friendRepo.CountFriends(ctx, m.ID); got != 2 {
		t.Fatalf("expected 2 friends left, got %d", got)
	}
	if got, _ := friendRepo.CountBestFriends(ctx, m.ID); got != 0 {
		t.Fatalf("expected 0 best friends left, got %d", got)
	}
}

func TestQuotaService_AddFriendEnforcesQuota(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierBasic)
	friendIDs := addFriends(t, db, svc, m, 3) // Basic cap

	over := createMember(t, db, domain.TierBasic)
	if _, err := svc.AddFriend(ctx, m.ID, over.ID); err != service.ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// re-adding an existing edge is a no-op, not a quota violation
	added, err := svc.AddFriend(ctx, m.ID, friendIDs[0])
	if err != nil || added {
		t.Fatalf("expected silent no-op, got added=%v err=%v", added, err)
	}

	friendRepo := repository.NewFriendRepository(db)
	if got, _ := friendRepo.CountFriends(ctx, m.ID); got != 3 {
		t.Fatalf("expected 3 friends, got %d", got)
	}
}

func TestQuotaService_AddBestFriendRules(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierPro)
	friendIDs := addFriends(t, db, svc, m, 4)

	// a stranger cannot be a best friend
	stranger := createMember(t, db, domain.TierBasic)
	if _, err := svc.AddBestFriend(ctx, m.ID, stranger.ID); err != service.ErrNotFriends {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}

	for _, id := range friendIDs[:2] {
		if _, err := svc.AddBestFriend(ctx, m.ID, id); err != nil {
			t.Fatalf("add best friend: %v", err)
		}
	}

	// Pro allows 2 best friends; the third promotion must fail
	if _, err := svc.AddBestFriend(ctx, m.ID, friendIDs[2]); err != service.ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestQuotaService_CreateGalleryEnforcesQuota(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierBasic)
	if _, err := svc.CreateGallery(ctx, m.ID, "first"); err != nil {
		t.Fatalf("create gallery: %v", err)
	}
	if _, err := svc.CreateGallery(ctx, m.ID, "second"); err != service.ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	member, err := repository.NewMemberRepository(db).GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.GalleryCount != 1 {
		t.Fatalf("expected gallery count 1, got %d", member.GalleryCount)
	}
}

func TestQuotaService_AddPictureEnforcesByteQuota(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))
	ctx := context.Background()

	m := createMember(t, db, domain.TierBasic)
	g, err := svc.CreateGallery(ctx, m.ID, "g")
	if err != nil {
		t.Fatalf("create gallery: %v", err)
	}

	if _, err := svc.AddPicture(ctx, m.ID, g.ID, "fits", 800); err != nil {
		t.Fatalf("add picture: %v", err)
	}
	// 800 + 300 > 1000: rejected whole, no partial acceptance
	if _, err := svc.AddPicture(ctx, m.ID, g.ID, "over", 300); err != service.ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// someone else's gallery is invisible to the uploader
	other := createMember(t, db, domain.TierBasic)
	if _, err := svc.AddPicture(ctx, other.ID, g.ID, "sneak", 100); err != service.ErrGalleryNotFound {
		t.Fatalf("expected ErrGalleryNotFound, got %v", err)
	}

	member, err := repository.NewMemberRepository(db).GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.PictureBytes != 800 {
		t.Fatalf("expected 800 stored bytes, got %d", member.PictureBytes)
	}
}

func TestQuotaService_UnknownTierRejected(t *testing.T) {
	db := openTestDB(t)
	svc := service.NewQuotaService(db, smallCatalog(t))

	m := createMember(t, db, domain.TierBasic)
	if _, err := svc.ChangeTier(context.Background(), m.ID, domain.Tier("Z")); err != domain.ErrUnknownTier {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}
