package casino

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bx-casino/internal/blackjack"
	"bx-casino/internal/cards"
	"bx-casino/internal/fairness"
	"bx-casino/internal/ledger"
	"bx-casino/internal/roulette"
	"bx-casino/internal/slots"
)

type Game string

const (
	GameBlackjack Game = "blackjack"
	GameRoulette  Game = "roulette"
	GameSlots     Game = "slots"
)

// Defaults seed every new session. Each game gets its own ledger.
type Defaults struct {
	StartingBalance decimal.Decimal
	Blackjack       ledger.Limits
	Roulette        ledger.Limits
	Slots           ledger.Limits
	SlotsBet        decimal.Decimal
}

// Session is the complete state of one player. Sessions never share state.
type Session struct {
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Blackjack blackjack.Table `json:"blackjack"`
	Roulette  roulette.Table  `json:"roulette"`
	Slots     slots.Machine   `json:"slots"`
}

func NewSession(d Defaults, now time.Time) (*Session, error) {
	bj, err := ledger.New[ledger.Stake](d.StartingBalance, d.Blackjack)
	if err != nil {
		return nil, err
	}
	rl, err := ledger.New[roulette.Bet](d.StartingBalance, d.Roulette)
	if err != nil {
		return nil, err
	}
	sl, err := ledger.New[ledger.Stake](d.StartingBalance, d.Slots)
	if err != nil {
		return nil, err
	}

	rouletteSeeds, err := fairness.NewSession()
	if err != nil {
		return nil, err
	}
	slotsSeeds, err := fairness.NewSession()
	if err != nil {
		return nil, err
	}

	bet := d.SlotsBet
	if bet.IsZero() {
		bet = d.Slots.Min
	}

	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Blackjack: blackjack.NewTable(bj),
		Roulette:  roulette.NewTable(rl, rouletteSeeds),
		Slots:     slots.NewMachine(sl, slotsSeeds, bet),
	}, nil
}

// Result is published for every settled round.
type Result struct {
	SessionID      string          `json:"session_id"`
	Game           Game            `json:"game"`
	Wagered        decimal.Decimal `json:"wagered"`
	Payout         decimal.Decimal `json:"payout"`
	Nonce          uint64          `json:"nonce"`
	ServerSeedHash string          `json:"server_seed_hash,omitempty"`
	SettledAt      time.Time       `json:"settled_at"`
}

func (r Result) Profit() decimal.Decimal { return r.Payout.Sub(r.Wagered) }

// FairnessView exposes the commitment for the next outcome, never the
// server seed behind it.
type FairnessView struct {
	ClientSeed     string `json:"client_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	Nonce          uint64 `json:"nonce"`
}

func fairnessView(s fairness.Session) FairnessView {
	return FairnessView{ClientSeed: s.ClientSeed, ServerSeedHash: s.Commitment(), Nonce: s.Nonce}
}

type BlackjackView struct {
	Phase       blackjack.Phase  `json:"phase"`
	Result      blackjack.Result `json:"result"`
	Balance     decimal.Decimal  `json:"balance"`
	Stake       decimal.Decimal  `json:"stake"`
	Limits      ledger.Limits    `json:"limits"`
	Player      []cardView       `json:"player"`
	Dealer      []cardView       `json:"dealer"`
	PlayerValue int              `json:"player_value"`
	DealerValue int              `json:"dealer_value"`
	CanDouble   bool             `json:"can_double"`
	Wagered     decimal.Decimal  `json:"wagered"`
	Payout      decimal.Decimal  `json:"payout"`
}

type cardView struct {
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	FaceUp bool   `json:"face_up"`
	Label  string `json:"label"`
}

type RouletteView struct {
	Balance  decimal.Decimal `json:"balance"`
	Limits   ledger.Limits   `json:"limits"`
	Bets     []roulette.Bet  `json:"bets"`
	Recent   []int           `json:"recent"`
	Fairness FairnessView    `json:"fairness"`
}

type SlotsView struct {
	Balance     decimal.Decimal `json:"balance"`
	Limits      ledger.Limits   `json:"limits"`
	Bet         decimal.Decimal `json:"bet"`
	ActiveLines int             `json:"active_lines"`
	Fairness    FairnessView    `json:"fairness"`
}

// View is what a player may see of a session: the dealer's hole card and
// the pending server seeds stay hidden.
type View struct {
	ID        uuid.UUID     `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Blackjack BlackjackView `json:"blackjack"`
	Roulette  RouletteView  `json:"roulette"`
	Slots     SlotsView     `json:"slots"`
}

func (s *Session) View() View {
	bj := s.Blackjack
	return View{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Blackjack: BlackjackView{
			Phase:       bj.Phase,
			Result:      bj.Result,
			Balance:     bj.Ledger.Balance(),
			Stake:       bj.Stake(),
			Limits:      bj.Ledger.Limits(),
			Player:      cardViews(bj.Player),
			Dealer:      cardViews(bj.DealerUpCards()),
			PlayerValue: bj.PlayerHand().Value,
			DealerValue: bj.DealerHand().Value,
			CanDouble:   bj.CanDouble,
			Wagered:     bj.Wagered,
			Payout:      bj.Payout,
		},
		Roulette: RouletteView{
			Balance:  s.Roulette.Ledger.Balance(),
			Limits:   s.Roulette.Ledger.Limits(),
			Bets:     s.Roulette.Ledger.Pending(),
			Recent:   s.Roulette.Recent,
			Fairness: fairnessView(s.Roulette.Fairness),
		},
		Slots: SlotsView{
			Balance:     s.Slots.Ledger.Balance(),
			Limits:      s.Slots.Ledger.Limits(),
			Bet:         s.Slots.Bet,
			ActiveLines: s.Slots.ActiveLines,
			Fairness:    fairnessView(s.Slots.Fairness),
		},
	}
}

func cardViews(cs []cards.Card) []cardView {
	out := make([]cardView, len(cs))
	for i, c := range cs {
		out[i] = cardView{Suit: string(c.Suit), Rank: string(c.Rank), FaceUp: c.FaceUp, Label: c.String()}
	}
	return out
}
