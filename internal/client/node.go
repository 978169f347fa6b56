package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/model"
	"github.com/AlexZinkM/tip-wallet/internal/tx"
)

const apiVersionHeader = "2"

// NodeClient talks to the blockchain peers of a token's network profile.
// One pooled HTTP client is shared across nodes; each call carries its own
// timeout so a slow node cannot block delivery to the others.
type NodeClient struct {
	client  *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// NewNodeClient creates a node client with a per-call timeout.
func NewNodeClient(timeout time.Duration, log *zap.Logger) *NodeClient {
	return &NodeClient{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log,
	}
}

// broadcastResponse is the node's answer to a transaction batch.
type broadcastResponse struct {
	Data struct {
		Accept  []string `json:"accept"`
		Invalid []string `json:"invalid"`
	} `json:"data"`
}

// Broadcast sends the transaction batch to every node of the profile
// concurrently. Each node call is isolated: a timeout, connection error or
// non-2xx answer is logged and dropped from the result rather than aborting
// the remaining nodes. Outcome order matches the configured node order, and
// an empty result means every node failed. No retries happen here.
func (c *NodeClient) Broadcast(ctx context.Context, profile model.NetworkProfile, transactions []*tx.Transaction) model.TransferResult {
	slots := make([]*model.BroadcastOutcome, len(profile.Nodes))

	var wg sync.WaitGroup
	for i, node := range profile.Nodes {
		wg.Add(1)
		go func(i int, node model.Node) {
			defer wg.Done()

			outcome, err := c.broadcastToNode(ctx, node, transactions)
			if err != nil {
				c.log.Warn("node broadcast failed",
					zap.String("token", profile.Token),
					zap.String("host", node.Host),
					zap.Int("port", node.Port),
					zap.Error(err))
				return
			}
			slots[i] = outcome
		}(i, node)
	}
	wg.Wait()

	result := model.TransferResult{}
	for _, outcome := range slots {
		if outcome != nil {
			result.Outcomes = append(result.Outcomes, *outcome)
		}
	}
	return result
}

func (c *NodeClient) broadcastToNode(ctx context.Context, node model.Node, transactions []*tx.Transaction) (*model.BroadcastOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{"transactions": transactions})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transactions: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, node.URL()+"/api/v2/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Version", apiVersionHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post transactions: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	outcome := &model.BroadcastOutcome{
		Node:     node,
		Response: json.RawMessage(raw),
	}

	var parsed broadcastResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && len(parsed.Data.Accept) > 0 {
		outcome.Accepted = true
		outcome.TransactionID = parsed.Data.Accept[0]
	}
	return outcome, nil
}

// GetFromNode issues a GET against the FIRST configured node and returns
// the raw "data" payload, or nil on any failure (transport error, non-2xx,
// missing data field). This soft-failure contract is what the balance read
// relies on.
func (c *NodeClient) GetFromNode(ctx context.Context, profile model.NetworkProfile, path string, params url.Values) json.RawMessage {
	data, err := c.getData(ctx, profile, path, params)
	if err != nil {
		c.log.Warn("node read failed",
			zap.String("token", profile.Token),
			zap.String("path", path),
			zap.Error(err))
		return nil
	}
	return data
}

func (c *NodeClient) getData(ctx context.Context, profile model.NetworkProfile, path string, params url.Values) (json.RawMessage, error) {
	if len(profile.Nodes) == 0 {
		return nil, fmt.Errorf("%w: token %q has no nodes", model.ErrBadNetworkConfig, profile.Token)
	}
	node := profile.Nodes[0]

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := node.URL() + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("API-Version", apiVersionHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNodeUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: node returned status %d", model.ErrNodeUnreachable, resp.StatusCode)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%w: response has no data field", model.ErrMalformedResponse)
	}
	return envelope.Data, nil
}

// Balance reads an address's balance in base units from the first node of
// the profile. This is a deliberate single-node read: the node list is
// operator-curated and broadcast goes to the same set, so no quorum is
// attempted.
func (c *NodeClient) Balance(ctx context.Context, profile model.NetworkProfile, address string) (uint64, error) {
	data, err := c.getData(ctx, profile, "/api/v2/wallets/"+url.PathEscape(address), nil)
	if err != nil {
		return 0, err
	}

	var wallet struct {
		Balance json.Number `json:"balance"`
	}
	if err := json.Unmarshal(data, &wallet); err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	if wallet.Balance == "" {
		return 0, fmt.Errorf("%w: wallet has no balance field", model.ErrMalformedResponse)
	}
	balance, err := strconv.ParseUint(wallet.Balance.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric balance %q", model.ErrMalformedResponse, wallet.Balance)
	}
	return balance, nil
}
