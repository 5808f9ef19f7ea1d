package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func openThrottleTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
	return db
}

// The throttle window must move with the service clock alone: entries
// are stamped from it and compared against it, so shifting the clock
// opens and closes the gate deterministically.
func TestAccrualService_ThrottleFollowsServiceClock(t *testing.T) {
	db := openThrottleTestDB(t)
	ctx := context.Background()

	catalog, err := domain.NewTierCatalog(domain.DefaultTierSpecs())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc := NewAccrualService(db, catalog, domain.DefaultAccrualRules())

	base := time.Now().Truncate(time.Microsecond)
	svc.now = func() time.Time { return base }

	m := &domain.Member{
		Username: fmt.Sprintf("clock_%d", time.Now().UnixNano()),
		Tier:     domain.TierBasic,
	}
	if err := repository.NewMemberRepository(db).Create(ctx, m); err != nil {
		t.Fatalf("create member: %v", err)
	}

	first, err := svc.GrantWithThrottle(ctx, m.ID, domain.AwardActivity, 5*time.Minute)
	if err != nil {
		t.Fatalf("first grant: %v", err)
	}
	if first.Entry == nil {
		t.Fatalf("expected first grant to pay")
	}
	if !first.Entry.CreatedAt.Equal(base) {
		t.Fatalf("expected entry stamped at %v, got %v", base, first.Entry.CreatedAt)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	second, err := svc.GrantWithThrottle(ctx, m.ID, domain.AwardActivity, 5*time.Minute)
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if second.Entry != nil || second.Skipped != "throttled" {
		t.Fatalf("expected grant inside the window throttled, got %+v", second)
	}

	svc.now = func() time.Time { return base.Add(6 * time.Minute) }
	third, err := svc.GrantWithThrottle(ctx, m.ID, domain.AwardActivity, 5*time.Minute)
	if err != nil {
		t.Fatalf("third grant: %v", err)
	}
	if third.Entry == nil {
		t.Fatalf("expected grant past the window to pay")
	}
}
