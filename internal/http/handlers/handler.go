package handlers

import (
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HandlerConfig holds the knobs the handlers need beyond the DB pool.
type HandlerConfig struct {
	ProfileSecret  string
	AdminMemberIDs []int64

	CommentGap  time.Duration
	SurfGap     time.Duration
	TierStipend time.Duration
}

type Handler struct {
	DB      *pgxpool.Pool
	Catalog *domain.TierCatalog
	Config  HandlerConfig

	MemberRepo    *repository.MemberRepository
	LedgerRepo    *repository.LedgerRepository
	BonusRepo     *repository.BonusRepository
	FriendRepo    *repository.FriendRepository
	GalleryRepo   *repository.GalleryRepository
	GuestbookRepo *repository.GuestbookRepository
	VisitorRepo   *repository.VisitorRepository
	PhotoReqRepo  *repository.PhotoRequestRepository

	Accrual *service.AccrualService
	Quota   *service.QuotaService

	admins map[int64]struct{}
}

func NewHandler(db *pgxpool.Pool, catalog *domain.TierCatalog, cfg HandlerConfig) *Handler {
	admins := make(map[int64]struct{}, len(cfg.AdminMemberIDs))
	for _, id := range cfg.AdminMemberIDs {
		admins[id] = struct{}{}
	}
	return &Handler{
		DB:      db,
		Catalog: catalog,
		Config:  cfg,

		MemberRepo:    repository.NewMemberRepository(db),
		LedgerRepo:    repository.NewLedgerRepository(db),
		BonusRepo:     repository.NewBonusRepository(db),
		FriendRepo:    repository.NewFriendRepository(db),
		GalleryRepo:   repository.NewGalleryRepository(db),
		GuestbookRepo: repository.NewGuestbookRepository(db),
		VisitorRepo:   repository.NewVisitorRepository(db),
		PhotoReqRepo:  repository.NewPhotoRequestRepository(db),

		Accrual: service.NewAccrualService(db, catalog, domain.DefaultAccrualRules()),
		Quota:   service.NewQuotaService(db, catalog),

		admins: admins,
	}
}

// getMemberID извлекает member_id из контекста Gin
func getMemberID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	val, ok := c.Get("member_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// isAdmin checks the env allowlist first, then the member row flag.
func (h *Handler) isAdmin(member *domain.Member) bool {
	if member == nil {
		return false
	}
	if _, ok := h.admins[member.ID]; ok {
		return true
	}
	return member.IsAdmin
}
