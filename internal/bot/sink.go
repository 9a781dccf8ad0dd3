package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"botdl/internal/entity"
)

// messageSink delivers pipeline output into one chat. Text updates edit a
// single status message instead of flooding the chat; the status message
// is deleted once a file goes out.
type messageSink struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	statusID int
}

func (s *messageSink) SendText(text string) error {
	if s.statusID == 0 {
		sent, err := s.api.Send(tgbotapi.NewMessage(s.chatID, text))
		if err != nil {
			return fmt.Errorf("send status: %w", err)
		}

		s.statusID = sent.MessageID

		return nil
	}

	if _, err := s.api.Send(tgbotapi.NewEditMessageText(s.chatID, s.statusID, text)); err != nil {
		return fmt.Errorf("edit status: %w", err)
	}

	return nil
}

func (s *messageSink) SendFile(path string, kind entity.MediaKind, caption string) error {
	if _, err := s.api.Send(mediaFor(s.chatID, path, kind, caption)); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}

	if s.statusID != 0 {
		if _, err := s.api.Request(tgbotapi.NewDeleteMessage(s.chatID, s.statusID)); err == nil {
			s.statusID = 0
		}
	}

	return nil
}

// mediaFor picks the Telegram media type matching the file kind.
func mediaFor(chatID int64, path string, kind entity.MediaKind, caption string) tgbotapi.Chattable {
	file := tgbotapi.FilePath(path)

	switch kind {
	case entity.KindVideo:
		v := tgbotapi.NewVideo(chatID, file)
		v.Caption = caption
		v.SupportsStreaming = true

		return v
	case entity.KindAudio:
		a := tgbotapi.NewAudio(chatID, file)
		a.Caption = caption

		return a
	case entity.KindImage:
		p := tgbotapi.NewPhoto(chatID, file)
		p.Caption = caption

		return p
	default:
		d := tgbotapi.NewDocument(chatID, file)
		d.Caption = caption

		return d
	}
}
