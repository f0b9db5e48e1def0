package notify

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"padaria/internal/constants"
	"padaria/internal/ledger"
	"padaria/internal/models"
	"padaria/internal/utils"
)

// Notifier pushes operational events to the admin Telegram chat. It is an
// outbound channel only: the bot never reads updates.
type Notifier struct {
	api         *tgbotapi.BotAPI
	adminChatID int64
}

// InitNotifier connects the Telegram bot. A missing token or chat id
// disables notifications without failing startup: every method is safe to
// call on a nil Notifier.
func InitNotifier(token string, adminChatID int64) (*Notifier, error) {
	if token == "" || adminChatID == 0 {
		log.Println("Notificações Telegram desativadas (TELEGRAM_APITOKEN ou ADMIN_CHAT_ID em falta).")
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar o Telegram Bot API: %w", err)
	}
	log.Printf("Notificador Telegram autorizado como %s", api.Self.UserName)

	return &Notifier{api: api, adminChatID: adminChatID}, nil
}

func (n *Notifier) send(text string) {
	if n == nil || n.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("Notifier: erro ao enviar mensagem Telegram: %v", err)
	}
}

// SettlementConfirmed announces a confirmed driver settlement.
func (n *Notifier) SettlementConfirmed(s models.SettlementRecord) {
	if n == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Acerto confirmado*\n")
	fmt.Fprintf(&b, "Distribuidor: %s\n", s.DriverID)
	fmt.Fprintf(&b, "Período: %s a %s\n", utils.FormatDateForDisplay(s.WeekStartDate), utils.FormatDateForDisplay(s.WeekEndDate))
	fmt.Fprintf(&b, "Recebido: %s\n", utils.FormatEuro(s.TotalReceived))
	fmt.Fprintf(&b, "A entregar em dinheiro: %s", utils.FormatEuro(s.TotalToSettle))
	if s.AmountDelivered.Valid {
		fmt.Fprintf(&b, "\nContado: %s (diferença %s)", utils.FormatEuro(s.AmountDelivered.Float64), utils.FormatEuro(s.Variance.Float64))
	}
	n.send(b.String())
}

// ProductionDigest announces the morning production suggestions.
func (n *Notifier) ProductionDigest(suggestions []ledger.ProductionSuggestion) {
	if n == nil || len(suggestions) == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🥖 *Sugestões de produção*\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "%s: %d", s.ProductName, s.SuggestedQuantity)
		if s.Trend != constants.TREND_STABLE {
			fmt.Fprintf(&b, " (%s)", s.Trend)
		}
		b.WriteString("\n")
	}
	n.send(strings.TrimRight(b.String(), "\n"))
}

// HighReturnAlert warns about a product with an unusually high return share.
func (n *Notifier) HighReturnAlert(date string, p ledger.ProductLoadBreakdown) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("⚠️ *Devoluções altas* em %s\nProduto %s: %d carregados, %d devolvidos (%d%% aproveitamento)",
		utils.FormatDateForDisplay(date), p.ProductID, p.Loaded, p.Returned, p.UtilizationRate))
}
