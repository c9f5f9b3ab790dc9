package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/qs3c/options_go_server/config"
)

// Client 行情数据源客户端。
// 所有方法的失败对调用方都是非致命的：取不到行情时回退用户手填的数值。
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *config.MarketDataConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// GetQuote 获取标的现价
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote
	if err := c.get(ctx, "/v1/quote", url.Values{"symbol": {symbol}}, &quote); err != nil {
		return nil, err
	}
	if quote.Price <= 0 {
		return nil, fmt.Errorf("no price for symbol %s", symbol)
	}
	return &quote, nil
}

// GetExpirations 获取期权到期日列表（升序）
func (c *Client) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	var resp expirationsResponse
	if err := c.get(ctx, "/v1/options/expirations", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}
	sort.Strings(resp.Expirations)
	return resp.Expirations, nil
}

// GetStrikes 获取某到期日的行权价列表（升序）
func (c *Client) GetStrikes(ctx context.Context, symbol, expiration, optionType string) ([]float64, error) {
	contracts, err := c.chainSide(ctx, symbol, expiration, optionType)
	if err != nil {
		return nil, err
	}

	strikes := make([]float64, 0, len(contracts))
	for _, ct := range contracts {
		strikes = append(strikes, ct.Strike)
	}
	sort.Float64s(strikes)
	return strikes, nil
}

// GetContract 获取最接近给定行权价的合约行情（隐含波动率 + 标记价）
func (c *Client) GetContract(ctx context.Context, symbol, expiration string, strike float64, optionType string) (*ContractQuote, error) {
	contracts, err := c.chainSide(ctx, symbol, expiration, optionType)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return nil, fmt.Errorf("empty option chain for %s %s", symbol, expiration)
	}

	best := contracts[0]
	for _, ct := range contracts[1:] {
		if math.Abs(ct.Strike-strike) < math.Abs(best.Strike-strike) {
			best = ct
		}
	}
	return &best, nil
}

func (c *Client) chainSide(ctx context.Context, symbol, expiration, optionType string) ([]ContractQuote, error) {
	var resp chainResponse
	params := url.Values{"symbol": {symbol}, "expiration": {expiration}}
	if err := c.get(ctx, "/v1/options/chain", params, &resp); err != nil {
		return nil, err
	}

	if optionType == "put" {
		return resp.Puts, nil
	}
	return resp.Calls, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("market data api status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
