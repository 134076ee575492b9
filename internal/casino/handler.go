package casino

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bx-casino/internal/blackjack"
	"bx-casino/internal/ledger"
	"bx-casino/internal/roulette"
)

type handler struct {
	service  *Service
	board    *Leaderboard
	validate *validator.Validate
}

type clientSeedRequest struct {
	Seed string `json:"seed" validate:"required,max=128"`
}

type slotsSpinRequest struct {
	Bet   decimal.Decimal `json:"bet"`
	Lines int             `json:"lines" validate:"min=0,max=3"`
}

// Dozen and column bets name their 1-based index, or list all twelve numbers.
type rouletteBetRequest struct {
	Type    string          `json:"type" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Index   int             `json:"index" validate:"min=0,max=3"`
	Numbers []int           `json:"numbers" validate:"max=12,dive,min=0,max=36"`
}

func (r rouletteBetRequest) bet() (roulette.Bet, error) {
	c := roulette.Category(r.Type)
	if r.Index > 0 {
		if len(r.Numbers) > 0 {
			return roulette.Bet{}, fmt.Errorf("%w: send index or numbers, not both", roulette.ErrInvalidNumbers)
		}
		return roulette.Indexed(c, r.Index, r.Amount)
	}
	return roulette.NewBet(c, r.Amount, r.Numbers...)
}

type blackjackBetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func RegisterRoutes(r fiber.Router, service *Service, board *Leaderboard) {
	h := &handler{service: service, board: board, validate: validator.New()}

	r.Post("/sessions", h.createSession)
	r.Get("/sessions/:id", h.getSession)
	r.Delete("/sessions/:id", h.deleteSession)

	r.Post("/sessions/:id/:game/client-seed", h.clientSeed)

	r.Post("/sessions/:id/slots/spin", h.spinSlots)

	r.Post("/sessions/:id/roulette/bets", h.placeRouletteBet)
	r.Delete("/sessions/:id/roulette/bets", h.clearRouletteBets)
	r.Post("/sessions/:id/roulette/spin", h.spinRoulette)

	r.Post("/sessions/:id/blackjack/bet", h.blackjackBet)
	r.Delete("/sessions/:id/blackjack/bet", h.blackjackClearBet)
	r.Post("/sessions/:id/blackjack/:action", h.blackjackAction)

	r.Post("/verify", h.verify)
	r.Get("/leaderboard", h.leaderboard)
}

func (h *handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, blackjack.ErrWrongPhase):
		status = fiber.StatusConflict
	case ClientError(err):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		h.service.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}

	body := fiber.Map{"error": err.Error()}
	if code := ledger.Reason(err); code != "" {
		body["code"] = code
	}
	return c.Status(status).JSON(body)
}

func (h *handler) sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return id, nil
}

// bind decodes the body into req and checks its validate tags. When it
// returns false the error response is already written and the handler
// returns err as is.
func (h *handler) bind(c *fiber.Ctx, req any, allowEmpty bool) (bool, error) {
	if !(allowEmpty && len(c.Body()) == 0) {
		if err := c.BodyParser(req); err != nil {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "code": "invalid_request"})
	}
	return true, nil
}

func (h *handler) createSession(c *fiber.Ctx) error {
	sess, err := h.service.Create(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess.View())
}

func (h *handler) getSession(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	sess, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sess.View())
}

func (h *handler) deleteSession(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	h.board.Forget(id.String())
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) clientSeed(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body clientSeedRequest
	if ok, err := h.bind(c, &body, false); !ok {
		return err
	}

	view, err := h.service.SetClientSeed(c.UserContext(), id, Game(c.Params("game")), body.Seed)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(view)
}

func (h *handler) spinSlots(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body slotsSpinRequest
	if ok, err := h.bind(c, &body, true); !ok {
		return err
	}

	res, sess, err := h.service.SpinSlots(c.UserContext(), id, body.Bet, body.Lines)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"spin": res, "slots": sess.View().Slots})
}

func (h *handler) placeRouletteBet(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body rouletteBetRequest
	if ok, err := h.bind(c, &body, false); !ok {
		return err
	}

	bet, err := body.bet()
	if err != nil {
		return h.fail(c, err)
	}
	sess, err := h.service.PlaceRouletteBet(c.UserContext(), id, bet)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess.View().Roulette)
}

func (h *handler) clearRouletteBets(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	refund, sess, err := h.service.ClearRouletteBets(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"refund": refund, "roulette": sess.View().Roulette})
}

func (h *handler) spinRoulette(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, sess, err := h.service.SpinRoulette(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"spin": res, "roulette": sess.View().Roulette})
}

func (h *handler) blackjackBet(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}

	var body blackjackBetRequest
	if ok, err := h.bind(c, &body, false); !ok {
		return err
	}

	sess, err := h.service.BlackjackBet(c.UserContext(), id, body.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sess.View().Blackjack)
}

func (h *handler) blackjackClearBet(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	refund, sess, err := h.service.BlackjackClearBet(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"refund": refund, "blackjack": sess.View().Blackjack})
}

func (h *handler) blackjackAction(c *fiber.Ctx) error {
	id, err := h.sessionID(c)
	if err != nil {
		return h.fail(c, err)
	}
	sess, err := h.service.Blackjack(c.UserContext(), id, Action(c.Params("action")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sess.View().Blackjack)
}

func (h *handler) verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if ok, err := h.bind(c, &req, false); !ok {
		return err
	}
	res, err := Verify(req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

func (h *handler) leaderboard(c *fiber.Ctx) error {
	n := c.QueryInt("n", 10)
	if n < 1 || n > 100 {
		n = 10
	}
	return c.JSON(h.board.Top(n))
}
