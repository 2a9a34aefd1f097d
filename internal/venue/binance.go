package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/kalshi-lagbot/internal/model"
)

// Binance endpoints.
const (
	DefaultBinanceURL   = "https://api.binance.com"
	DefaultBinanceWSURL = "wss://stream.binance.com:9443"
)

// Binance quotes a symbol such as "BTCUSDT" over REST.
type Binance struct {
	httpSource
}

// NewBinance creates a Binance REST source.
func NewBinance(opts ...Option) *Binance {
	return &Binance{httpSource: newHTTPSource("binance", DefaultBinanceURL, opts)}
}

type binanceBookTicker struct {
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// Quote fetches the best bid/ask.
func (b *Binance) Quote(ctx context.Context, symbol string) (model.VenueQuote, error) {
	var t binanceBookTicker
	if err := b.getJSON(ctx, b.baseURL+"/api/v3/ticker/bookTicker?symbol="+url.QueryEscape(symbol), &t); err != nil {
		return model.VenueQuote{}, err
	}
	return MidFromStrings(b.name, t.BidPrice, t.AskPrice)
}

// BinanceStream quotes a symbol from the bookTicker websocket stream. Each
// Quote call dials, reads a single frame and closes.
type BinanceStream struct {
	wsURL  string
	dialer websocket.Dialer
}

// NewBinanceStream creates a Binance websocket source. An empty wsURL uses
// DefaultBinanceWSURL.
func NewBinanceStream(wsURL string) *BinanceStream {
	if wsURL == "" {
		wsURL = DefaultBinanceWSURL
	}
	return &BinanceStream{
		wsURL: strings.TrimRight(wsURL, "/"),
		dialer: websocket.Dialer{
			HandshakeTimeout: DefaultTimeout,
		},
	}
}

// Name returns the venue name shared with the REST source.
func (s *BinanceStream) Name() string { return "binance" }

type binanceStreamFrame struct {
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	AskPrice string `json:"a"`
}

// Quote reads the next bookTicker frame for symbol.
func (s *BinanceStream) Quote(ctx context.Context, symbol string) (model.VenueQuote, error) {
	endpoint := fmt.Sprintf("%s/ws/%s@bookTicker", s.wsURL, strings.ToLower(symbol))

	conn, _, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return model.VenueQuote{}, fetchErr(s.Name(), KindTransport, fmt.Errorf("dial: %w", err))
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return model.VenueQuote{}, fetchErr(s.Name(), KindTransport, err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		return model.VenueQuote{}, fetchErr(s.Name(), KindTransport, fmt.Errorf("read: %w", err))
	}

	var frame binanceStreamFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return model.VenueQuote{}, fetchErr(s.Name(), KindDecode, err)
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	return MidFromStrings(s.Name(), frame.BidPrice, frame.AskPrice)
}
