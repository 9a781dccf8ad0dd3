// Package bot runs the Telegram transport. It receives updates, submits
// accepted links to the dispatcher and reports results back to the chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"botdl/internal/config"
	"botdl/internal/consts"
	"botdl/internal/dispatch"
)

const (
	startText = "Hi! Send me a YouTube, Instagram, Twitter/X, Facebook or TikTok link " +
		"and I'll fetch the media for you.\n\n" +
		"Use /music <link> to get the audio track only."
	helpText = "Send a link and I'll download the video or images behind it.\n\n" +
		"/music <link> extracts the audio as mp3 with track info.\n" +
		"/help shows this message."
	aboutText = "botdl fetches videos, images and audio from social media links. " +
		"Downloads run through a set of extraction strategies with automatic fallback; " +
		"files are deleted from the server right after delivery."
	musicUsageText = "Usage: /music <link>"
	unknownCmdText = "Unknown command. Try /help."
)

// Bot wires Telegram updates into the dispatcher.
type Bot struct {
	log *slog.Logger
	cfg *config.Config
	api *tgbotapi.BotAPI

	dispatcher *dispatch.Dispatcher
}

// New authorizes against the Telegram API and registers the command menu.
func New(log *slog.Logger, cfg *config.Config, dispatcher *dispatch.Dispatcher) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Bot.Debug

	b := &Bot{
		log:        log.With(slog.String("package", "bot")),
		cfg:        cfg,
		api:        api,
		dispatcher: dispatcher,
	}

	if err := b.setCommands(); err != nil {
		b.log.Warn("failed to register command menu", slog.Any("error", err))
	}

	b.log.Info("authorized", slog.String("account", api.Self.UserName))

	return b, nil
}

func (b *Bot) setCommands() error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "What this bot does"},
		tgbotapi.BotCommand{Command: "help", Description: "How to use the bot"},
		tgbotapi.BotCommand{Command: "about", Description: "About this bot"},
		tgbotapi.BotCommand{Command: "music", Description: "Extract audio from a link"},
	)

	_, err := b.api.Request(cmds)

	return err
}

// Run consumes the long-polling updates channel until ctx is canceled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.Bot.PollTimeout

	updates := b.api.GetUpdatesChan(u)

	b.log.InfoContext(ctx, "listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.InfoContext(ctx, "got ctx done signal", slog.Any("error", ctx.Err()))

			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)

		return
	}

	b.submit(ctx, msg, msg.Text, false)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg, startText)
	case "help":
		b.reply(msg, helpText)
	case "about":
		b.reply(msg, aboutText)
	case "music":
		url := msg.CommandArguments()
		if url == "" {
			b.reply(msg, musicUsageText)

			return
		}

		b.submit(ctx, msg, url, true)
	default:
		b.reply(msg, unknownCmdText)
	}
}

// submit posts the status message and hands the link to the dispatcher.
// The sink keeps editing that status message as the pipeline progresses.
func (b *Bot) submit(ctx context.Context, msg *tgbotapi.Message, rawURL string, audioOnly bool) {
	log := b.log.With(slog.Int64("chat_id", msg.Chat.ID), slog.Bool("audio_only", audioOnly))

	status := tgbotapi.NewMessage(msg.Chat.ID, consts.MsgStarting)
	status.ReplyToMessageID = msg.MessageID

	sent, err := b.api.Send(status)
	if err != nil {
		log.WarnContext(ctx, "failed to send status message", slog.Any("error", err))
	}

	sink := &messageSink{api: b.api, chatID: msg.Chat.ID, statusID: sent.MessageID}

	if err := b.dispatcher.Handle(ctx, rawURL, audioOnly, sink); err != nil {
		log.InfoContext(ctx, "request rejected", slog.Any("error", err))

		if serr := sink.SendText(dispatch.UserMessage(err)); serr != nil {
			log.WarnContext(ctx, "failed to report rejection", slog.Any("error", serr))
		}
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.api.Send(reply); err != nil {
		b.log.Warn("failed to send reply", slog.Any("error", err))
	}
}
