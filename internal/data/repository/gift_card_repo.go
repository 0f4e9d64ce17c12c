package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type GiftCardRepository interface {
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*entity.GiftCard, error)
	// Debit subtracts amount and appends a redemption transaction in one
	// statement, or returns ErrInsufficientFunds.
	Debit(ctx context.Context, tenantID, id uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error)
	// Credit returns amount to the card and appends a refund transaction.
	Credit(ctx context.Context, tenantID, id uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, giftCardID uuid.UUID) ([]*entity.GiftCardTransaction, error)
}

type giftCardRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGiftCardRepository(db database.PgxIface, log *zap.Logger) GiftCardRepository {
	return &giftCardRepository{
		db:  db,
		log: log.With(zap.String("repository", "gift_card")),
	}
}

func (r *giftCardRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*entity.GiftCard, error) {
	query := `
		SELECT id, tenant_id, code, initial_balance, remaining_balance, status,
		       expires_at, created_at, updated_at
		FROM gift_cards
		WHERE tenant_id = $1 AND code = $2
	`

	var g entity.GiftCard
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, strings.ToUpper(code)).Scan(
		&g.ID,
		&g.TenantID,
		&g.Code,
		&g.InitialBalance,
		&g.RemainingBalance,
		&g.Status,
		&g.ExpiresAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find gift card", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("find gift card: %w", err)
	}

	return &g, nil
}

func (r *giftCardRepository) Debit(ctx context.Context, tenantID, id uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error) {
	query := `
		WITH debited AS (
			UPDATE gift_cards
			SET remaining_balance = remaining_balance - $3::numeric,
			    status = CASE WHEN remaining_balance - $3::numeric = 0 THEN 'redeemed' ELSE status END,
			    updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2 AND status = 'active'
			  AND remaining_balance >= $3::numeric
			RETURNING id, remaining_balance
		)
		INSERT INTO gift_card_transactions (id, gift_card_id, booking_id, type, amount, balance_after, created_at)
		SELECT $5, id, $4, 'redemption', $3::numeric, remaining_balance, NOW() FROM debited
		RETURNING balance_after
	`

	var balance decimal.Decimal
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id, amount, bookingID, uuid.New()).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrInsufficientFunds
	}
	if err != nil {
		r.log.Error("Failed to debit gift card",
			zap.Error(err),
			zap.String("gift_card_id", id.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return decimal.Zero, fmt.Errorf("debit gift card %s: %w", id, err)
	}

	return balance, nil
}

func (r *giftCardRepository) Credit(ctx context.Context, tenantID, id uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error) {
	query := `
		WITH credited AS (
			UPDATE gift_cards
			SET remaining_balance = remaining_balance + $3::numeric,
			    status = CASE WHEN status = 'redeemed' THEN 'active' ELSE status END,
			    updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2
			RETURNING id, remaining_balance
		)
		INSERT INTO gift_card_transactions (id, gift_card_id, booking_id, type, amount, balance_after, created_at)
		SELECT $5, id, $4, 'refund', $3::numeric, remaining_balance, NOW() FROM credited
		RETURNING balance_after
	`

	var balance decimal.Decimal
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id, amount, bookingID, uuid.New()).Scan(&balance)
	if err != nil {
		r.log.Error("Failed to refund gift card",
			zap.Error(err),
			zap.String("gift_card_id", id.String()),
		)
		return decimal.Zero, fmt.Errorf("refund gift card %s: %w", id, err)
	}

	return balance, nil
}

func (r *giftCardRepository) ListTransactions(ctx context.Context, giftCardID uuid.UUID) ([]*entity.GiftCardTransaction, error) {
	query := `
		SELECT id, gift_card_id, booking_id, type, amount, balance_after, created_at
		FROM gift_card_transactions
		WHERE gift_card_id = $1
		ORDER BY created_at ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, giftCardID)
	if err != nil {
		r.log.Error("Failed to list gift card transactions", zap.Error(err))
		return nil, fmt.Errorf("list gift card transactions: %w", err)
	}
	defer rows.Close()

	var txs []*entity.GiftCardTransaction
	for rows.Next() {
		var t entity.GiftCardTransaction
		if err := rows.Scan(&t.ID, &t.GiftCardID, &t.BookingID, &t.Type, &t.Amount, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gift card transaction: %w", err)
		}
		txs = append(txs, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gift card transactions: %w", err)
	}
	return txs, nil
}
