package usecase

import (
	"time"

	"appointment-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingInput is everything ComputePrice looks at. Instruments are optional.
type PricingInput struct {
	Services []*entity.Service
	Discount *entity.DiscountCode
	GiftCard *entity.GiftCard
	Package  *entity.CustomerPackage
	Tip      decimal.Decimal
	Now      time.Time
}

type PriceBreakdown struct {
	Subtotal            decimal.Decimal
	DiscountAmount      decimal.Decimal
	GiftCardAmount      decimal.Decimal
	PackageCoveredPrice decimal.Decimal
	DepositAmount       decimal.Decimal
	TipAmount           decimal.Decimal
	FinalPrice          decimal.Decimal
	RemainingBalance    decimal.Decimal

	DiscountApplied bool
	GiftCardApplied bool
	PackageApplied  bool
}

// round2 rounds half away from zero, which is half-up for the non-negative
// amounts handled here.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputePrice derives every amount of a booking from its inputs. Each
// derived amount is rounded once.
func ComputePrice(in PricingInput) PriceBreakdown {
	var pb PriceBreakdown

	subtotal := decimal.Zero
	for _, svc := range in.Services {
		subtotal = subtotal.Add(svc.Price)
	}
	pb.Subtotal = round2(subtotal)

	if discountEligible(in.Discount, pb.Subtotal, in.Now) {
		switch in.Discount.Type {
		case entity.DiscountPercentage:
			pb.DiscountAmount = round2(pb.Subtotal.Mul(in.Discount.Value).Div(hundred))
		case entity.DiscountFixed:
			pb.DiscountAmount = round2(in.Discount.Value)
		}
		pb.DiscountAmount = decimal.Min(pb.DiscountAmount, pb.Subtotal)
		pb.DiscountApplied = pb.DiscountAmount.IsPositive()
	}

	afterDiscount := pb.Subtotal.Sub(pb.DiscountAmount)

	if giftCardEligible(in.GiftCard, in.Now) {
		pb.GiftCardAmount = round2(decimal.Min(in.GiftCard.RemainingBalance, afterDiscount))
		pb.GiftCardApplied = pb.GiftCardAmount.IsPositive()
	}

	if packageCovers(in.Package, in.Services, in.Now) {
		pb.PackageCoveredPrice = afterDiscount
		pb.PackageApplied = true
	}

	deposit := decimal.Zero
	for _, svc := range in.Services {
		if !svc.DepositEnabled {
			continue
		}
		switch svc.DepositType {
		case entity.DepositPercentage:
			deposit = deposit.Add(svc.Price.Mul(svc.DepositValue).Div(hundred))
		case entity.DepositFixed:
			deposit = deposit.Add(svc.DepositValue)
		}
	}
	pb.DepositAmount = round2(deposit)

	if pb.PackageApplied {
		pb.FinalPrice = decimal.Zero
	} else {
		pb.FinalPrice = decimal.Max(decimal.Zero, afterDiscount.Sub(pb.GiftCardAmount))
	}

	pb.TipAmount = round2(decimal.Max(decimal.Zero, in.Tip))
	pb.RemainingBalance = decimal.Max(decimal.Zero, pb.FinalPrice.Add(pb.TipAmount).Sub(pb.DepositAmount))

	return pb
}

func discountEligible(d *entity.DiscountCode, subtotal decimal.Decimal, now time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}
	if d.ExpiresAt != nil && !now.Before(*d.ExpiresAt) {
		return false
	}
	if !d.HasUsesLeft() {
		return false
	}
	return subtotal.GreaterThanOrEqual(d.MinSpend)
}

func giftCardEligible(g *entity.GiftCard, now time.Time) bool {
	if g == nil || g.Status != entity.GiftCardActive {
		return false
	}
	if g.ExpiresAt != nil && !now.Before(*g.ExpiresAt) {
		return false
	}
	return g.RemainingBalance.IsPositive()
}

func packageCovers(p *entity.CustomerPackage, services []*entity.Service, now time.Time) bool {
	if p == nil || p.Status != entity.CustomerPackageActive || p.SessionsRemaining <= 0 {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}

	covered := make(map[uuid.UUID]struct{}, len(p.CoveredServiceIDs))
	for _, id := range p.CoveredServiceIDs {
		covered[id] = struct{}{}
	}
	for _, svc := range services {
		if _, ok := covered[svc.ID]; ok {
			return true
		}
	}
	return false
}
