// Package poll simulates live updates without a push channel: each poller
// re-runs a read against the conversation store on a fixed interval and
// hands the result to a callback when it structurally differs from the
// previous snapshot. One goroutine per poller; ticks never overlap.
package poll

import (
	"context"
	"log"
	"reflect"
	"time"

	"langpal/internal/chat"
	"langpal/internal/model"
)

// ConversationPoller refreshes one open conversation. Default interval is
// two seconds (config.Poll.ConversationInterval). New unread messages from
// the other participant are auto-marked read before delivery, since the
// viewer has the conversation on screen.
type ConversationPoller struct {
	chat      *chat.Service
	canonical string
	viewerID  string
	interval  time.Duration
	onChange  func([]model.Message)

	last []model.Message
}

func NewConversationPoller(svc *chat.Service, canonical, viewerID string, interval time.Duration, onChange func([]model.Message)) *ConversationPoller {
	return &ConversationPoller{
		chat:      svc,
		canonical: canonical,
		viewerID:  viewerID,
		interval:  interval,
		onChange:  onChange,
	}
}

// Run polls until ctx is cancelled. Cancellation stops the schedule of
// future ticks; an in-flight tick always finishes. Tick failures are logged
// and the next tick proceeds normally.
func (p *ConversationPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *ConversationPoller) tick(ctx context.Context) {
	msgs, err := p.chat.Messages(ctx, p.canonical)
	if err != nil {
		log.Printf("poll: failed to poll conversation %s: %v", p.canonical, err)
		return
	}
	if reflect.DeepEqual(msgs, p.last) {
		return
	}

	hasUnread := false
	for _, m := range msgs {
		if m.SenderID != p.viewerID && !m.Read {
			hasUnread = true
			break
		}
	}
	if hasUnread {
		if err := p.chat.MarkRead(ctx, p.canonical, p.viewerID, time.Now().UnixMilli()); err != nil {
			log.Printf("poll: failed to mark %s read: %v", p.canonical, err)
		} else if refreshed, err := p.chat.Messages(ctx, p.canonical); err == nil {
			msgs = refreshed
		}
	}

	p.last = msgs
	if p.onChange != nil {
		p.onChange(msgs)
	}
}

// ChatListPoller refreshes the chat-list projection. Default interval is
// three seconds (config.Poll.ChatListInterval). It never runs concurrently
// with a ConversationPoller in the source app: one or the other screen is
// open, not both.
type ChatListPoller struct {
	chat     *chat.Service
	viewerID string
	interval time.Duration
	onChange func([]model.ChatListEntry)

	last []model.ChatListEntry
}

func NewChatListPoller(svc *chat.Service, viewerID string, interval time.Duration, onChange func([]model.ChatListEntry)) *ChatListPoller {
	return &ChatListPoller{
		chat:     svc,
		viewerID: viewerID,
		interval: interval,
		onChange: onChange,
	}
}

// Run polls until ctx is cancelled, same contract as
// ConversationPoller.Run.
func (p *ChatListPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *ChatListPoller) tick(ctx context.Context) {
	list, err := p.chat.ChatList(ctx, p.viewerID)
	if err != nil {
		log.Printf("poll: failed to poll chat list for %s: %v", p.viewerID, err)
		return
	}
	if reflect.DeepEqual(list, p.last) {
		return
	}
	p.last = list
	if p.onChange != nil {
		p.onChange(list)
	}
}
