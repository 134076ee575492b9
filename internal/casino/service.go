package casino

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bx-casino/internal/blackjack"
	"bx-casino/internal/cards"
	"bx-casino/internal/event"
	"bx-casino/internal/fairness"
	"bx-casino/internal/ledger"
	"bx-casino/internal/roulette"
	"bx-casino/internal/slots"
)

var (
	ErrUnsupportedGame = errors.New("game does not support this operation")
	ErrUnknownAction   = errors.New("unknown blackjack action")
)

type Action string

const (
	ActionDeal   Action = "deal"
	ActionHit    Action = "hit"
	ActionStand  Action = "stand"
	ActionDouble Action = "double"
	ActionStep   Action = "step"
	ActionPlay   Action = "play"
)

// Service runs every game operation against stored sessions. Operations on
// one session are serialised; different sessions run in parallel.
type Service struct {
	store    Store
	bus      *event.Bus
	log      *zap.Logger
	defaults Defaults
	deck     cards.Source
	now      func() time.Time
	locks    *keyedMutex
}

type Option func(*Service)

// WithDeckSource replaces the crypto shuffle source, for tests.
func WithDeckSource(src cards.Source) Option {
	return func(s *Service) { s.deck = src }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, bus *event.Bus, log *zap.Logger, d Defaults, opts ...Option) *Service {
	s := &Service{
		store:    store,
		bus:      bus,
		log:      log,
		defaults: d,
		deck:     cards.CryptoSource{},
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context) (*Session, error) {
	sess, err := NewSession(s.defaults, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if err := s.store.Put(ctx, sess); err != nil {
		s.log.Error("store session", zap.String("session", sess.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.bus.Publish(event.EventSessionCreated, sess.ID.String())
	s.log.Info("session created", zap.String("session", sess.ID.String()))
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id.String())
	defer unlock()
	return s.store.Delete(ctx, id)
}

// Sweep deletes sessions idle since before olderThan and returns their ids.
// Each candidate is re-read under its lock, so a session touched after it was
// listed survives.
func (s *Service) Sweep(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error) {
	idle, err := s.store.Idle(ctx, olderThan)
	if err != nil {
		return nil, fmt.Errorf("list idle sessions: %w", err)
	}

	var (
		swept []uuid.UUID
		errs  []error
	)
	for _, id := range idle {
		ok, err := s.sweepOne(ctx, id, olderThan)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			swept = append(swept, id)
		}
	}
	return swept, errors.Join(errs...)
}

func (s *Service) sweepOne(ctx context.Context, id uuid.UUID, olderThan time.Time) (bool, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	current, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sweep session %s: %w", id, err)
	}
	if !current.UpdatedAt.Before(olderThan) {
		return false, nil
	}

	err = s.store.Delete(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sweep session %s: %w", id, err)
	}
	return true, nil
}

// update loads the session under its lock, applies fn and stores the result.
// A failed fn leaves the stored session untouched, except for a voided
// blackjack round, whose refund must be kept.
func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(*Session) (*Result, error)) (*Session, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	res, err := fn(&next)
	if err != nil && !errors.Is(err, cards.ErrDeckExhausted) {
		s.log.Debug("operation rejected", zap.String("session", id.String()), zap.Error(err))
		return nil, err
	}
	opErr := err

	next.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, &next); err != nil {
		s.log.Error("store session", zap.String("session", id.String()), zap.Error(err))
		return nil, fmt.Errorf("store session: %w", err)
	}
	if opErr != nil {
		s.log.Warn("round voided", zap.String("session", id.String()), zap.Error(opErr))
		return &next, opErr
	}

	if res != nil {
		res.SessionID = id.String()
		res.SettledAt = next.UpdatedAt
		s.bus.Publish(event.EventCasinoPlayed, *res)
		s.log.Info("round settled",
			zap.String("session", res.SessionID),
			zap.String("game", string(res.Game)),
			zap.Uint64("nonce", res.Nonce),
			zap.String("wagered", res.Wagered.String()),
			zap.String("credited", res.Payout.String()),
		)
	}
	return &next, nil
}

func (s *Service) SetClientSeed(ctx context.Context, id uuid.UUID, game Game, seed string) (FairnessView, error) {
	var view FairnessView
	_, err := s.update(ctx, id, func(sess *Session) (*Result, error) {
		switch game {
		case GameSlots:
			m, err := sess.Slots.WithClientSeed(seed)
			if err != nil {
				return nil, err
			}
			sess.Slots = m
			view = fairnessView(m.Fairness)
		case GameRoulette:
			f, err := sess.Roulette.Fairness.WithClientSeed(seed)
			if err != nil {
				return nil, err
			}
			sess.Roulette.Fairness = f
			view = fairnessView(f)
		default:
			return nil, fmt.Errorf("%w: %s client seed", ErrUnsupportedGame, game)
		}
		return nil, nil
	})
	return view, err
}

// SpinSlots plays one spin. A zero bet or line count keeps the machine's
// current setting.
func (s *Service) SpinSlots(ctx context.Context, id uuid.UUID, bet decimal.Decimal, lines int) (slots.SpinResult, *Session, error) {
	var out slots.SpinResult
	sess, err := s.update(ctx, id, func(sess *Session) (*Result, error) {
		m := sess.Slots
		if !bet.IsZero() {
			m = m.SetBet(bet)
		}
		if lines != 0 {
			m = m.SetActiveLines(lines)
		}

		m, res, err := m.Spin()
		if err != nil {
			return nil, err
		}
		sess.Slots = m
		out = res
		return &Result{
			Game:           GameSlots,
			Wagered:        res.Wagered,
			Payout:         res.Win.Total,
			Nonce:          res.Outcome.Nonce,
			ServerSeedHash: res.Outcome.ServerSeedHash,
		}, nil
	})
	return out, sess, err
}

func (s *Service) PlaceRouletteBet(ctx context.Context, id uuid.UUID, bet roulette.Bet) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) (*Result, error) {
		t, err := sess.Roulette.PlaceBet(bet)
		if err != nil {
			return nil, err
		}
		sess.Roulette = t
		return nil, nil
	})
}

func (s *Service) ClearRouletteBets(ctx context.Context, id uuid.UUID) (decimal.Decimal, *Session, error) {
	var refund decimal.Decimal
	sess, err := s.update(ctx, id, func(sess *Session) (*Result, error) {
		sess.Roulette, refund = sess.Roulette.ClearBets()
		return nil, nil
	})
	return refund, sess, err
}

func (s *Service) SpinRoulette(ctx context.Context, id uuid.UUID) (roulette.SpinResult, *Session, error) {
	var out roulette.SpinResult
	sess, err := s.update(ctx, id, func(sess *Session) (*Result, error) {
		t, res, err := sess.Roulette.Spin()
		if err != nil {
			return nil, err
		}
		sess.Roulette = t
		out = res
		return &Result{
			Game:           GameRoulette,
			Wagered:        res.Wagered,
			Payout:         res.Payout,
			Nonce:          res.Outcome.Nonce,
			ServerSeedHash: res.Outcome.ServerSeedHash,
		}, nil
	})
	return out, sess, err
}

func (s *Service) BlackjackBet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) (*Result, error) {
		t, err := sess.Blackjack.Bet(amount)
		if err != nil {
			return nil, err
		}
		sess.Blackjack = t
		return nil, nil
	})
}

func (s *Service) BlackjackClearBet(ctx context.Context, id uuid.UUID) (decimal.Decimal, *Session, error) {
	var refund decimal.Decimal
	sess, err := s.update(ctx, id, func(sess *Session) (*Result, error) {
		t, r, err := sess.Blackjack.ClearBet()
		if err != nil {
			return nil, err
		}
		sess.Blackjack, refund = t, r
		return nil, nil
	})
	return refund, sess, err
}

// Blackjack applies one player or dealer action. A round that reaches
// game over in this call is published as settled.
func (s *Service) Blackjack(ctx context.Context, id uuid.UUID, action Action) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) (*Result, error) {
		before := sess.Blackjack

		var (
			t   blackjack.Table
			err error
		)
		switch action {
		case ActionDeal:
			t, err = before.Deal(s.deck)
		case ActionHit:
			t, err = before.Hit()
		case ActionStand:
			t, err = before.Stand()
		case ActionDouble:
			t, err = before.Double()
		case ActionStep:
			t, err = before.DealerStep()
		case ActionPlay:
			t, err = before.PlayDealer()
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
		}
		if err != nil {
			if errors.Is(err, cards.ErrDeckExhausted) {
				sess.Blackjack = t
			}
			return nil, err
		}
		sess.Blackjack = t

		if before.Phase == blackjack.GameOver || t.Phase != blackjack.GameOver {
			return nil, nil
		}
		return &Result{Game: GameBlackjack, Wagered: t.Wagered, Payout: t.Payout}, nil
	})
}

// DrawFor is the outcome shape a provably fair game consumes.
func DrawFor(g Game) (fairness.Draw, error) {
	switch g {
	case GameSlots:
		return slots.GridDraw, nil
	case GameRoulette:
		return roulette.WheelDraw, nil
	default:
		return fairness.Draw{}, fmt.Errorf("%w: %s is not seed based", ErrUnsupportedGame, g)
	}
}

type VerifyRequest struct {
	fairness.Seeds
	Nonce   uint64 `json:"nonce"`
	Game    Game   `json:"game" validate:"required"`
	Outcome []int  `json:"outcome" validate:"max=64"`
}

type VerifyResult struct {
	Valid          bool   `json:"valid"`
	Digest         string `json:"digest"`
	ServerSeedHash string `json:"server_seed_hash"`
	Values         []int  `json:"values"`
}

// Verify recomputes a revealed outcome. It needs no session state.
func Verify(req VerifyRequest) (VerifyResult, error) {
	d, err := DrawFor(req.Game)
	if err != nil {
		return VerifyResult{}, err
	}
	out, err := fairness.Generate(req.Seeds, req.Nonce, d)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Valid:          fairness.Verify(req.Seeds, req.Nonce, d, req.Outcome),
		Digest:         out.Digest,
		ServerSeedHash: out.ServerSeedHash,
		Values:         out.Values,
	}, nil
}

// ClientError reports whether err is caused by the request rather than the
// service.
func ClientError(err error) bool {
	if ledger.Reason(err) != "" {
		return true
	}
	for _, target := range []error{
		ErrSessionNotFound,
		ErrUnsupportedGame,
		ErrUnknownAction,
		fairness.ErrEmptyClientSeed,
		fairness.ErrInvalidDraw,
		blackjack.ErrWrongPhase,
		blackjack.ErrNoBet,
		blackjack.ErrCannotDouble,
		cards.ErrDeckExhausted,
		roulette.ErrNoBets,
		roulette.ErrUnknownCategory,
		roulette.ErrInvalidNumbers,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
