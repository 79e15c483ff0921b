package payments

import (
	"math"

	"go.uber.org/zap"

	"outings/models"
)

// Gateway authorizes a charge. No real money moves anywhere in this system.
type Gateway interface {
	Charge(amount float64, ctx models.ChargeContext) models.ChargeResult
}

// MockGateway simulates an external charge decision with a deterministic
// rule: any positive amount evenly divisible by 1000 is declined, everything
// else (including 0) succeeds. The rule exists so the failure path can be
// triggered reproducibly in tests.
type MockGateway struct {
	log *zap.Logger
}

func NewMockGateway(log *zap.Logger) *MockGateway {
	return &MockGateway{log: log}
}

func (g *MockGateway) Charge(amount float64, ctx models.ChargeContext) models.ChargeResult {
	if amount > 0 && math.Mod(amount, 1000) == 0 {
		g.log.Info("simulated payment failure",
			zap.Float64("amount", amount),
			zap.String("bookingId", ctx.BookingID),
			zap.String("userId", ctx.UserID))
		return models.ChargeResult{Success: false}
	}
	g.log.Info("simulated payment success",
		zap.Float64("amount", amount),
		zap.String("bookingId", ctx.BookingID),
		zap.String("userId", ctx.UserID))
	return models.ChargeResult{Success: true}
}
