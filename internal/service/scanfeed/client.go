package scanfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ShelfScout/internal/domain/models"
	drepo "ShelfScout/internal/domain/repository"
)

// Client implements a ScanStream backed by the scanner-gateway WebSocket.
type Client struct {
	token          string
	websocketURL   string
	locations      []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new scanner-gateway ScanStream.
func New(token, websocketURL string, locations []string, reconnectDelay, pingInterval time.Duration) drepo.ScanStream {
	return &Client{
		token:          token,
		websocketURL:   websocketURL,
		locations:      locations,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("scanfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("scanfeed: connected")
	return nil
}

// Subscribe subscribes to configured locations.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("scanfeed not connected")
	}
	for _, loc := range c.locations {
		msg := map[string]string{"type": "subscribe", "location": loc}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", loc, err)
		}
		log.Printf("scanfeed: subscribed %s", loc)
	}
	return nil
}

type gwScan struct {
	ISBN      string  `json:"isbn"`
	Title     string  `json:"title"`
	Cond      string  `json:"cond"`
	Series    string  `json:"series"`
	SeriesIdx int     `json:"series_idx"`
	Loc       string  `json:"loc"`
	Decision  string  `json:"decision"`
	Price     float64 `json:"price"`
	T         int64   `json:"t"` // ms
}

type gwMessage struct {
	Type string   `json:"type"`
	Data []gwScan `json:"data"`
}

// Read streams ScanEvents and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.ScanEvent, <-chan error) {
	scans := make(chan *models.ScanEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(scans)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("scanfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("scanfeed read: %w", err)
					return
				}
				var m gwMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-scan frames
					continue
				}
				if m.Type != "scan" {
					continue
				}
				for _, d := range m.Data {
					sec := d.T / 1000
					ev := &models.ScanEvent{
						EventID:        uuid.NewString(),
						ISBN:           d.ISBN,
						Title:          d.Title,
						Condition:      d.Cond,
						SeriesName:     d.Series,
						SeriesIndex:    d.SeriesIdx,
						LocationName:   d.Loc,
						Decision:       models.ScanDecision(d.Decision),
						EstimatedPrice: d.Price,
						Timestamp:      sec,
					}
					select {
					case scans <- ev:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return scans, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
