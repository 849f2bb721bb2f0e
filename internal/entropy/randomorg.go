// Optional true-randomness Source backed by random.org, with a local pool.
// Falls back to crypto/rand when the API is unavailable.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Pool is a Source that serves decimal fractions fetched from random.org in
// batches. A nil or keyless Pool degrades to crypto/rand draws.
type Pool struct {
	apiKey string
	client *http.Client

	mu   sync.Mutex
	pool []float64
}

// NewPool creates a random.org backed Source. Returns nil if apiKey is empty;
// a nil *Pool is still usable and serves crypto/rand draws.
func NewPool(apiKey string) *Pool {
	if apiKey == "" {
		return nil
	}
	return &Pool{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Float64 returns a draw in [0, 1) from the pool, refilling when low.
func (p *Pool) Float64() float64 {
	if p == nil {
		return cryptoFloat()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pool) < 10 {
		p.refill()
	}
	if len(p.pool) == 0 {
		return cryptoFloat()
	}

	v := p.pool[0]
	p.pool = p.pool[1:]
	return v
}

// IntN returns a draw in [0, n) derived from Float64.
func (p *Pool) IntN(n int) int {
	v := int(p.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

func (p *Pool) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        p.apiKey,
			"n":             100,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("random.org marshal failed", "error", err)
		return
	}

	resp, err := p.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("random.org fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("random.org read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Debug("random.org parse failed", "error", err)
		return
	}
	if result.Error != nil {
		slog.Debug("random.org API error", "error", result.Error.Message)
		return
	}

	p.pool = append(p.pool, result.Result.Random.Data...)
	slog.Debug("random.org pool refilled", "count", len(result.Result.Random.Data))
}

// cryptoFloat generates a random float64 in [0, 1) using crypto/rand.
func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; 0.5 is a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
