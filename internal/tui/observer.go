package tui

import "github.com/mmcdole/artpick/internal/service"

// ChannelObserver adapts service.Observer to a channel for Bubble Tea.
// The channel only ever holds the latest snapshot.
type ChannelObserver struct {
	ch chan service.Snapshot
}

// NewChannelObserver creates a new channel-based observer. ch should have
// a buffer of one.
func NewChannelObserver(ch chan service.Snapshot) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnSnapshot replaces whatever snapshot is still waiting in the channel
func (o *ChannelObserver) OnSnapshot(snap service.Snapshot) {
	for {
		select {
		case o.ch <- snap:
			return
		default:
		}
		select {
		case <-o.ch:
		default:
		}
	}
}
