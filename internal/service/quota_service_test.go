package service

import (
	"reflect"
	"testing"
)

func TestAppendCascaded(t *testing.T) {
	// 7 and 5 were trimmed directly; 3 vanished when its friend edge
	// went away; 1 survived.
	direct := []int64{7, 5}
	before := []int64{7, 5, 3, 1}
	after := []int64{1}

	got := appendCascaded(direct, before, after)
	if !reflect.DeepEqual(got, []int64{7, 5, 3}) {
		t.Fatalf("expected [7 5 3], got %v", got)
	}
}

func TestAppendCascaded_NothingCascaded(t *testing.T) {
	direct := []int64{9}
	before := []int64{9, 2}
	after := []int64{2}

	got := appendCascaded(direct, before, after)
	if !reflect.DeepEqual(got, []int64{9}) {
		t.Fatalf("expected [9], got %v", got)
	}
}

func TestAppendCascaded_Empty(t *testing.T) {
	if got := appendCascaded(nil, nil, nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}
