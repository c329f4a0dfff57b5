package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceOracle is the capability the core needs from the market data
// source: current price for a symbol. Implementations can fail; callers
// treat failure as transient.
type PriceOracle interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// coinGeckoIDs maps our asset symbols to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"sol":  "solana",
	"doge": "dogecoin",
	"ltc":  "litecoin",
	"bnb":  "binancecoin",
	"xrp":  "ripple",
	"ada":  "cardano",
}

// PriceService fetches market prices from CoinGecko with a CryptoCompare
// fallback. Responses are cached briefly so the settlement sweep doesn't
// hammer the API.
type PriceService struct {
	client   *http.Client
	logger   *zap.Logger
	cacheTTL time.Duration

	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	fetchedAt map[string]time.Time
}

// NewPriceService creates a new PriceService
func NewPriceService(timeout, cacheTTL time.Duration, logger *zap.Logger) *PriceService {
	return &PriceService{
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
		cacheTTL:  cacheTTL,
		prices:    make(map[string]decimal.Decimal),
		fetchedAt: make(map[string]time.Time),
	}
}

// GetPrice returns the current USD price for a symbol
func (ps *PriceService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := ps.GetPrices(ctx, []string{symbol})
	if err != nil {
		return decimal.Zero, err
	}
	price, ok := prices[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", ErrOracleUnavailable, symbol)
	}
	return price, nil
}

// GetPrices returns current USD prices for a set of symbols
func (ps *PriceService) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(symbols))
	var missing []string

	ps.mu.RLock()
	now := time.Now()
	for _, symbol := range symbols {
		key := strings.ToLower(symbol)
		if price, ok := ps.prices[key]; ok && now.Sub(ps.fetchedAt[key]) < ps.cacheTTL {
			result[symbol] = price
		} else {
			missing = append(missing, symbol)
		}
	}
	ps.mu.RUnlock()

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := ps.fetchCoinGecko(ctx, missing)
	if err != nil {
		ps.logger.Warn("coingecko fetch failed, trying cryptocompare", zap.Error(err))
		fetched, err = ps.fetchCryptoCompare(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
		}
	}

	ps.mu.Lock()
	for symbol, price := range fetched {
		key := strings.ToLower(symbol)
		ps.prices[key] = price
		ps.fetchedAt[key] = time.Now()
		result[symbol] = price
	}
	ps.mu.Unlock()

	for _, symbol := range symbols {
		if _, ok := result[symbol]; !ok {
			return nil, fmt.Errorf("%w: no price for %s", ErrOracleUnavailable, symbol)
		}
	}
	return result, nil
}

// fetchCoinGecko fetches prices from the CoinGecko simple/price endpoint.
// Response shape: {"bitcoin":{"usd":65000.12}, ...}
func (ps *PriceService) fetchCoinGecko(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		id, ok := coinGeckoIDs[strings.ToLower(symbol)]
		if !ok {
			return nil, fmt.Errorf("unsupported symbol: %s", symbol)
		}
		ids = append(ids, id)
	}

	endpoint := "https://api.coingecko.com/api/v3/simple/price?vs_currencies=usd&ids=" +
		url.QueryEscape(strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ps.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned %d", resp.StatusCode)
	}

	var body map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("coingecko parse error: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(symbols))
	for _, symbol := range symbols {
		id := coinGeckoIDs[strings.ToLower(symbol)]
		coin, ok := body[id]
		if !ok {
			continue
		}
		if price, ok := coin["usd"]; ok && price.IsPositive() {
			prices[symbol] = price
		}
	}
	return prices, nil
}

// fetchCryptoCompare fetches one symbol at a time from CryptoCompare.
// Response shape: {"USD": 65000.12}
func (ps *PriceService) fetchCryptoCompare(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(symbols))
	for _, symbol := range symbols {
		endpoint := fmt.Sprintf("https://min-api.cryptocompare.com/data/price?fsym=%s&tsyms=USD",
			url.QueryEscape(strings.ToUpper(symbol)))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		resp, err := ps.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cryptocompare request failed: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("cryptocompare returned %d", resp.StatusCode)
		}

		var body map[string]decimal.Decimal
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("cryptocompare parse error: %w", decodeErr)
		}

		price, ok := body["USD"]
		if !ok || !price.IsPositive() {
			return nil, fmt.Errorf("cryptocompare returned no USD price for %s", symbol)
		}
		prices[symbol] = price
	}
	return prices, nil
}
