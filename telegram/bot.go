package telegram

import (
	"fmt"
	"sync"

	"github.com/NicoNex/echotron/v3"
	"github.com/labstack/gommon/log"
)

var (
	Token  string
	ChatID int64

	tgBot      *echotron.API
	tgBotMutex sync.RWMutex
)

// Start connects the announcement bot. When no token is configured the bot
// stays disabled and notifications become no-ops.
func Start() error {
	token := Token
	if token == "" || len(token) < 30 {
		return nil
	}

	bot := echotron.NewAPI(token)

	res, err := bot.GetMe()
	if !res.Ok || err != nil {
		return fmt.Errorf("[Telegram] unable to connect to bot: %v %v", res.Description, err)
	}

	tgBotMutex.Lock()
	tgBot = &bot
	tgBotMutex.Unlock()

	log.Infof("[Telegram] Authorized as %s", res.Result.Username)
	return nil
}

// NotifyNewCampground announces a freshly created campground to the
// configured chat. Failures are logged, never surfaced to the request.
func NotifyNewCampground(name, author, url string) {
	tgBotMutex.RLock()
	bot := tgBot
	tgBotMutex.RUnlock()
	if bot == nil || ChatID == 0 {
		return
	}

	text := fmt.Sprintf("New campground %q by %s\n%s", name, author, url)
	if _, err := bot.SendMessage(text, ChatID, nil); err != nil {
		log.Warnf("[Telegram] Cannot send notification: %v", err)
	}
}
