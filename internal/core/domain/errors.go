package domain

import "errors"

var (
	ErrCallNotFound     = errors.New("call not found")
	ErrFrameNotFound    = errors.New("frame not found")
	ErrTargetNotMounted = errors.New("render target not mounted")
	ErrTrackNotBound    = errors.New("track not bound")
)
