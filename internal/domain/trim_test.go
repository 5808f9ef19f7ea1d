package domain

import (
	"reflect"
	"testing"
)

func TestExcessNewestFirst(t *testing.T) {
	newestFirst := []int64{50, 40, 30, 20, 10}

	if got := ExcessNewestFirst(newestFirst, 3); !reflect.DeepEqual(got, []int64{50, 40}) {
		t.Fatalf("expected the two newest, got %v", got)
	}
	if got := ExcessNewestFirst(newestFirst, 5); got != nil {
		t.Fatalf("expected nil when under limit, got %v", got)
	}
	if got := ExcessNewestFirst(newestFirst, 0); len(got) != 5 {
		t.Fatalf("expected everything at limit 0, got %v", got)
	}
	if got := ExcessNewestFirst(newestFirst, -1); len(got) != 5 {
		t.Fatalf("expected negative limit treated as zero, got %v", got)
	}
	if got := ExcessNewestFirst(nil, 3); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestPlanByteTrim(t *testing.T) {
	pics := []PictureRef{
		{ID: 4, SizeBytes: 400},
		{ID: 3, SizeBytes: 400},
		{ID: 2, SizeBytes: 400},
		{ID: 1, SizeBytes: 400},
	}

	ids, freed := PlanByteTrim(pics, 1600, 1000)
	if !reflect.DeepEqual(ids, []int64{4, 3}) {
		t.Fatalf("expected newest two evicted, got %v", ids)
	}
	if freed != 800 {
		t.Fatalf("expected 800 freed, got %d", freed)
	}
}

func TestPlanByteTrim_AlreadyFits(t *testing.T) {
	pics := []PictureRef{{ID: 1, SizeBytes: 100}}
	ids, freed := PlanByteTrim(pics, 100, 1000)
	if ids != nil || freed != 0 {
		t.Fatalf("expected no-op, got %v freed %d", ids, freed)
	}
}

// An oversized single picture still gets evicted even when that leaves
// the member far below the cap.
func TestPlanByteTrim_OversizedPicture(t *testing.T) {
	pics := []PictureRef{
		{ID: 2, SizeBytes: 5000},
		{ID: 1, SizeBytes: 100},
	}
	ids, freed := PlanByteTrim(pics, 5100, 1000)
	if !reflect.DeepEqual(ids, []int64{2}) {
		t.Fatalf("expected only the oversized picture, got %v", ids)
	}
	if freed != 5000 {
		t.Fatalf("expected 5000 freed, got %d", freed)
	}
}

func TestTrimReport_Empty(t *testing.T) {
	if !(TrimReport{}).Empty() {
		t.Fatal("zero report must be empty")
	}
	if (TrimReport{EmotionReset: true}).Empty() {
		t.Fatal("emotion reset alone makes the report non-empty")
	}
	if (TrimReport{FriendsRemoved: []int64{1}}).Empty() {
		t.Fatal("removed friends make the report non-empty")
	}
}
