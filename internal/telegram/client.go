// Package telegram adapts the Bot API to the publisher's channel interface.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nvoropaev/tgrepost/internal/publisher"
)

// Client posts media groups to one channel.
type Client struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	username string
}

var _ publisher.ChannelPublisher = (*Client)(nil)

// New authorizes the bot and remembers how the channel is addressed: a
// numeric chat id or an @username.
func New(token, channel string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	c := &Client{bot: bot}
	c.chatID, c.username = resolveChat(channel)
	return c, nil
}

// SendMediaGroup posts items as one group. The Bot API rejects the whole
// group on any error, so either every item is posted or none is.
func (c *Client) SendMediaGroup(ctx context.Context, items []publisher.MediaItem) error {
	media := make([]interface{}, 0, len(items))
	for _, item := range items {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(item.Path))
		photo.Caption = item.Caption
		photo.ParseMode = item.ParseMode
		media = append(media, photo)
	}
	group := tgbotapi.MediaGroupConfig{
		ChatID:          c.chatID,
		ChannelUsername: c.username,
		Media:           media,
	}
	if _, err := c.bot.SendMediaGroup(group); err != nil {
		return fmt.Errorf("send media group: %w", err)
	}
	return nil
}

// resolveChat splits a channel setting into the Bot API's two addressing
// forms; exactly one of the results is set.
func resolveChat(channel string) (int64, string) {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return id, ""
	}
	return 0, channel
}
