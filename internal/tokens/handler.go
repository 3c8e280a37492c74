package tokens

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	svc     *Service
	repo    SnapshotStore
	targets []Target
	chain   string
	logger  *zap.Logger
}

// NewHandler serves the configured targets. chain is applied to single-address
// lookups that do not name one.
func NewHandler(svc *Service, repo SnapshotStore, targets []Target, chain string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, repo: repo, targets: targets, chain: chain, logger: logger}
}

// List resolves every configured target now and returns them by market cap.
func (h *Handler) List(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("collect tokens", zap.Any("panic", r))
			err = c.Status(fiber.StatusInternalServerError).JSON(ErrorOut{Error: "Failed to fetch tokens"})
		}
	}()

	if len(h.targets) == 0 {
		h.logger.Info("no tokens configured")
		return c.JSON(ListOut{Tokens: []SummaryOut{}})
	}
	items := h.svc.Collect(c.Context(), h.targets)
	return c.JSON(ListOut{Tokens: toOut(items)})
}

// Latest returns the snapshot stored by the most recent poll cycle.
func (h *Handler) Latest(c *fiber.Ctx) error {
	snap, err := h.repo.Latest(c.Context())
	if errors.Is(err, ErrSnapshotNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorOut{Error: err.Error()})
	}
	if err != nil {
		h.logger.Error("load snapshot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorOut{Error: "Failed to load snapshot"})
	}
	return c.JSON(snap.Out())
}

// GetOne resolves a single address on demand and surfaces the failure text.
func (h *Handler) GetOne(c *fiber.Ctx) error {
	t := Target{Chain: c.Query("chain", h.chain), Address: c.Params("address")}
	if err := t.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorOut{Error: err.Error()})
	}
	sum, err := h.svc.Resolve(c.Context(), t)
	if err != nil {
		h.logger.Warn("single token lookup failed", zap.String("target", t.String()), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorOut{Error: err.Error()})
	}
	return c.JSON(sum.Out())
}
