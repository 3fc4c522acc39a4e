package swap

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Observation is one published price sample: a mantissa scaled by
// 10^Expo, the feed's uncertainty in the same scale, and the publish time in
// unix seconds. Observations are read fresh for every swap and never cached
// across operations.
type Observation struct {
	Price       int64
	Conf        int64
	Expo        int32
	PublishTime int64
}

// PriceSource resolves the latest observation for a price feed reference.
type PriceSource interface {
	Observe(feed string) (Observation, error)
}

// ValidateObservation decides whether an observation is admissible for pricing
// a swap. maxSlippageBps bounds the feed's relative uncertainty: the trade is
// rejected whenever conf * 10000 > price * maxSlippageBps, which substitutes a
// verifiable bound on feed uncertainty for negotiated execution slippage.
func ValidateObservation(obs Observation, now int64, maxSlippageBps uint16) error {
	age, ok := checkedSubInt64(now, obs.PublishTime)
	if !ok {
		return ErrOracleStale
	}
	if age > MaxStalenessSeconds {
		return ErrOracleStale
	}
	if obs.Price <= 0 {
		return ErrOracleInvalidPrice
	}
	if obs.Conf < 0 {
		return ErrOracleInvalidConfidence
	}
	confScaled := new(big.Int).Mul(big.NewInt(obs.Conf), big.NewInt(BpsDenominator))
	priceScaled := new(big.Int).Mul(big.NewInt(obs.Price), big.NewInt(int64(maxSlippageBps)))
	if confScaled.Cmp(priceScaled) > 0 {
		return ErrOracleSlippageExceeded
	}
	return nil
}

func checkedSubInt64(a, b int64) (int64, bool) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, false
	}
	return diff, true
}

// ManualSource provides an in-memory price source used for tests and manual
// overrides during incident response.
type ManualSource struct {
	mu    sync.RWMutex
	feeds map[string]Observation
}

// NewManualSource constructs an empty manual source.
func NewManualSource() *ManualSource {
	return &ManualSource{feeds: make(map[string]Observation)}
}

// Set stores the observation under the supplied feed identifier.
func (m *ManualSource) Set(feed string, obs Observation) {
	if m == nil {
		return
	}
	trimmed := strings.TrimSpace(feed)
	if trimmed == "" {
		return
	}
	m.mu.Lock()
	m.feeds[trimmed] = obs
	m.mu.Unlock()
}

// Observe retrieves the stored observation for the feed.
func (m *ManualSource) Observe(feed string) (Observation, error) {
	if m == nil {
		return Observation{}, fmt.Errorf("manual source not configured")
	}
	m.mu.RLock()
	obs, ok := m.feeds[strings.TrimSpace(feed)]
	m.mu.RUnlock()
	if !ok {
		return Observation{}, fmt.Errorf("manual source: feed %q not found", feed)
	}
	return obs, nil
}

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource fetches observations from a price-feed HTTP endpoint that serves
// the latest sample for a feed identifier.
type HTTPSource struct {
	client   HTTPDoer
	endpoint string
	apiKey   string
}

// NewHTTPSource constructs an HTTP price source adapter. When the client is
// nil http.DefaultClient is used. The API key is optional and only added to
// the request headers when supplied.
func NewHTTPSource(client HTTPDoer, endpoint, apiKey string) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, endpoint: strings.TrimSpace(endpoint), apiKey: strings.TrimSpace(apiKey)}
}

func (s *HTTPSource) Observe(feed string) (Observation, error) {
	if s == nil || s.endpoint == "" {
		return Observation{}, fmt.Errorf("http source not configured")
	}
	req, err := http.NewRequest(http.MethodGet, s.endpoint, nil)
	if err != nil {
		return Observation{}, err
	}
	values := url.Values{}
	values.Set("id", strings.TrimSpace(feed))
	req.URL.RawQuery = values.Encode()
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Observation{}, fmt.Errorf("price source: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload struct {
		Price       json.Number `json:"price"`
		Conf        json.Number `json:"conf"`
		Expo        int32       `json:"expo"`
		PublishTime int64       `json:"publish_time"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Observation{}, fmt.Errorf("price source: decode: %w", err)
	}
	price, err := payload.Price.Int64()
	if err != nil {
		return Observation{}, fmt.Errorf("price source: invalid price %q: %w", payload.Price, err)
	}
	conf, err := payload.Conf.Int64()
	if err != nil {
		return Observation{}, fmt.Errorf("price source: invalid conf %q: %w", payload.Conf, err)
	}
	if conf < 0 {
		return Observation{}, ErrOracleInvalidConfidence
	}
	return Observation{Price: price, Conf: conf, Expo: payload.Expo, PublishTime: payload.PublishTime}, nil
}
