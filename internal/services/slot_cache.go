package services

import "context"

// SlotCache holds recent slot summaries. Implementations log their own
// failures; a miss or an error only costs a store read. Set never lowers a
// cached participant count, so a reader that loaded an older count cannot
// overwrite the one written after a join.
type SlotCache interface {
	Get(ctx context.Context, postID int64) (*JoinedPostView, bool)
	Set(ctx context.Context, view *JoinedPostView)
}

type noopSlotCache struct{}

func NewNoopSlotCache() SlotCache { return noopSlotCache{} }

func (noopSlotCache) Get(context.Context, int64) (*JoinedPostView, bool) { return nil, false }
func (noopSlotCache) Set(context.Context, *JoinedPostView)               {}
