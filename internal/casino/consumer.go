package casino

import (
	"go.uber.org/zap"

	"bx-casino/internal/event"
	"bx-casino/internal/monitoring"
)

type Broadcaster interface {
	BroadcastJSON(v any) error
}

// RegisterConsumers fans settled rounds out to the leaderboard, the metrics
// and the live feed.
func RegisterConsumers(bus *event.Bus, board *Leaderboard, ws Broadcaster, log *zap.Logger) {
	bus.Subscribe(event.EventCasinoPlayed, func(payload any) {
		res, ok := payload.(Result)
		if !ok {
			log.Error("unexpected payload", zap.String("event", event.EventCasinoPlayed), zap.Any("payload", payload))
			return
		}

		board.Record(res)

		wagered, _ := res.Wagered.Float64()
		paid, _ := res.Payout.Float64()
		monitoring.RecordRound(string(res.Game), wagered, paid)

		if ws != nil {
			if err := ws.BroadcastJSON(res); err != nil {
				log.Warn("broadcast round", zap.Error(err))
			}
		}
	})

	bus.Subscribe(event.EventSessionCreated, func(any) {
		monitoring.SessionsCreated.Inc()
	})
}
