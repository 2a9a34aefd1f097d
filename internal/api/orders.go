package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// ErrMissingOrderID is returned when an accepted order response carries no id.
var ErrMissingOrderID = errors.New("missing order_id in response")

// NewCreateOrderRequest builds a limit buy for order. The price is rendered
// with four decimals on the field matching the order side.
func NewCreateOrderRequest(order model.OrderRequest, timeInForce string) CreateOrderRequest {
	req := CreateOrderRequest{
		Ticker:        order.Ticker,
		ClientOrderID: uuid.NewString(),
		Side:          string(order.Side),
		Action:        "buy",
		Count:         order.Quantity,
		Type:          "limit",
		TimeInForce:   timeInForce,
	}

	price := decimal.NewFromFloat(order.Price).StringFixed(4)
	if order.Side == model.SideYes {
		req.YesPriceDollars = price
	} else {
		req.NoPriceDollars = price
	}

	return req
}

// CreateOrder submits a single limit buy order.
func (c *Client) CreateOrder(ctx context.Context, order model.OrderRequest, timeInForce string) (*model.OrderResponse, error) {
	body := NewCreateOrderRequest(order, timeInForce)

	var resp CreateOrderResponse
	if err := c.post(ctx, "/portfolio/orders", body, &resp); err != nil {
		return nil, fmt.Errorf("create order %s: %w", order.Ticker, err)
	}

	switch {
	case resp.Order != nil && resp.Order.OrderID != "":
		return &model.OrderResponse{OrderID: resp.Order.OrderID}, nil
	case resp.OrderID != "":
		return &model.OrderResponse{OrderID: resp.OrderID}, nil
	}

	return nil, fmt.Errorf("create order %s: %w", order.Ticker, ErrMissingOrderID)
}
