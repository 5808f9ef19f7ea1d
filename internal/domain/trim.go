package domain

// Downgrade trimming has to be deterministic: every trim walks its
// collection newest-first, so the oldest relationships and galleries
// survive a downgrade. Picture eviction follows the same policy.

// ExcessNewestFirst returns the ids to remove so that at most limit
// remain. ids must be ordered newest first; the returned slice keeps
// that order. A negative limit is treated as zero.
func ExcessNewestFirst(ids []int64, limit int) []int64 {
	if limit < 0 {
		limit = 0
	}
	if len(ids) <= limit {
		return nil
	}
	out := make([]int64, len(ids)-limit)
	copy(out, ids[:len(ids)-limit])
	return out
}

// PictureRef is the id/weight pair byte trimming works on.
type PictureRef struct {
	ID        int64
	SizeBytes int64
}

// PlanByteTrim selects pictures to delete, newest first, until the
// stored total fits under maxBytes. Returns the victim ids and the
// bytes they free.
func PlanByteTrim(newestFirst []PictureRef, totalBytes, maxBytes int64) (ids []int64, freed int64) {
	for _, p := range newestFirst {
		if totalBytes-freed <= maxBytes {
			break
		}
		ids = append(ids, p.ID)
		freed += p.SizeBytes
	}
	return ids, freed
}

// TrimReport lists what a downgrade removed, by id. Deletions are
// permanent; upgrading again never restores them.
type TrimReport struct {
	FriendsRemoved     []int64 `json:"friends_removed,omitempty"`
	BestFriendsRemoved []int64 `json:"best_friends_removed,omitempty"`
	GalleriesRemoved   []int64 `json:"galleries_removed,omitempty"`
	PicturesRemoved    []int64 `json:"pictures_removed,omitempty"`
	BytesFreed         int64   `json:"bytes_freed"`
	EmotionReset       bool    `json:"emotion_reset"`
}

// Empty reports whether the downgrade removed nothing.
func (r TrimReport) Empty() bool {
	return len(r.FriendsRemoved) == 0 && len(r.BestFriendsRemoved) == 0 &&
		len(r.GalleriesRemoved) == 0 && len(r.PicturesRemoved) == 0 && !r.EmotionReset
}
