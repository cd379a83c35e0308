package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox/payloads"
)

// Line is one priced line used to build an order snapshot.
type Line struct {
	ProductID    uuid.UUID
	ProductName  string
	Quantity     int
	Grams        decimal.Decimal
	CatalogPrice decimal.Decimal
	UnitPrice    decimal.Decimal
}

// LineTotal is unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ApplyDiscount subtracts a flat discount and clamps at zero.
func ApplyDiscount(subtotal, discount decimal.Decimal) decimal.Decimal {
	return decimal.Max(subtotal.Sub(discount), decimal.Zero)
}

// SnapshotInput carries everything frozen into an order.
type SnapshotInput struct {
	UserID         uuid.UUID
	Lines          []Line
	Discount       decimal.Decimal
	CouponCode     *string
	IdempotencyKey *string
	Delivery       Delivery
	PlacedAt       time.Time
}

// NewSnapshot builds the immutable order row with totals computed from lines.
func NewSnapshot(input SnapshotInput) *models.Order {
	subtotal := Subtotal(input.Lines).Round(2)
	discount := input.Discount.Round(2)
	delivery := input.Delivery.Trimmed()
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Subtotal:        subtotal,
		Discount:        discount,
		TotalAmount:     ApplyDiscount(subtotal, discount),
		CouponCode:      input.CouponCode,
		IdempotencyKey:  input.IdempotencyKey,
		DeliveryName:    delivery.Name,
		DeliveryContact: delivery.Contact,
		DeliveryAddress: delivery.Address,
		DeliveryCity:    delivery.City,
		Items:           make([]models.OrderItem, 0, len(input.Lines)),
		CreatedAt:       input.PlacedAt,
	}
	for i, line := range input.Lines {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:      order.ID,
			Position:     i,
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			WeightGrams:  line.Grams,
			CatalogPrice: line.CatalogPrice,
			UnitPrice:    line.UnitPrice,
			LineTotal:    line.LineTotal().Round(2),
		})
	}
	return order
}

// PlacedEvent describes a freshly persisted order for the outbox.
func PlacedEvent(order *models.Order, actor *outbox.ActorRef) outbox.DomainEvent {
	items := make([]payloads.OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, payloads.OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		OccurredAt:    order.CreatedAt,
		Data: payloads.OrderPlacedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			Subtotal:    order.Subtotal,
			Discount:    order.Discount,
			TotalAmount: order.TotalAmount,
			CouponCode:  order.CouponCode,
			ItemCount:   len(order.Items),
			Items:       items,
			Delivery:    payloads.OrderPlacedAddress{City: order.DeliveryCity},
			PlacedAt:    order.CreatedAt,
		},
	}
}
