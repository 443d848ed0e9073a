package ports

import (
	"context"

	"tilecast/internal/core/domain"
)

// FrameRepository persists the latest frame per call so a reconnecting
// client can render immediately, before the next reconciliation pass.
type FrameRepository interface {
	Save(ctx context.Context, callID domain.CallID, frame domain.Frame) error
	Latest(ctx context.Context, callID domain.CallID) (domain.Frame, error)
	Delete(ctx context.Context, callID domain.CallID) error
}
