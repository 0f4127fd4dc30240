package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// ledgerChannel — имя NOTIFY-канала, в который пишут триггеры на таблицах
// registrations и admin_actions (см. migrations/0001_init.up.sql).
const ledgerChannel = "ledger_events"

const (
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// ledgerNotification — полезная нагрузка триггера.
type ledgerNotification struct {
	Table        string `json:"table"`
	Op           string `json:"op"`
	ID           int    `json:"id"`
	TournamentID int    `json:"tournament_id,omitempty"`
}

// LedgerListener слушает Postgres NOTIFY и транслирует изменения реестра в
// комнаты хаба. Уведомления доставляются после коммита транзакции, поэтому
// подписчик, перечитавший занятость по событию, видит зафиксированные данные.
type LedgerListener struct {
	listener *pq.Listener
	hub      *Hub
	logger   *slog.Logger
}

func NewLedgerListener(dsn string, hub *Hub, logger *slog.Logger) *LedgerListener {
	l := &LedgerListener{hub: hub, logger: logger}
	l.listener = pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			switch event {
			case pq.ListenerEventConnected:
				logger.Info("ledger listener connected")
			case pq.ListenerEventReconnected:
				logger.Info("ledger listener reconnected")
			case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
				logger.Warn("ledger listener connection problem", slog.Any("error", err))
			}
		})
	return l
}

// Run блокируется до отмены контекста. После разрыва соединения все комнаты
// получают RESYNC: за время разрыва уведомления могли быть потеряны, и
// клиенты должны перечитать состояние (сам по себе канал — только
// оптимизация поверх опроса).
func (l *LedgerListener) Run(ctx context.Context) error {
	if err := l.listener.Listen(ledgerChannel); err != nil {
		return err
	}
	defer l.listener.Close()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case notification := <-l.listener.Notify:
			if notification == nil {
				// nil приходит после переустановки соединения.
				l.hub.BroadcastAll(Event{Type: EventResync})
				continue
			}
			l.dispatch(notification.Extra)

		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				l.logger.Warn("ledger listener ping failed", slog.Any("error", err))
			}
		}
	}
}

func (l *LedgerListener) dispatch(payload string) {
	var n ledgerNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		l.logger.Warn("ignoring malformed ledger notification",
			slog.String("payload", payload), slog.Any("error", err))
		return
	}

	var event Event
	switch n.Table {
	case "registrations":
		event = Event{Type: EventRegistrationsChanged, TournamentID: n.TournamentID}
	case "admin_actions":
		event = Event{Type: EventAuditAppended}
	default:
		return
	}

	if event.TournamentID != 0 {
		l.hub.BroadcastToRoom(RoomForTournament(event.TournamentID), event)
	}
	l.hub.BroadcastToRoom(RoomAll, event)
}
