package tipbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AlexZinkM/tip-wallet/internal/config"
	"github.com/AlexZinkM/tip-wallet/internal/crypto"
	"github.com/AlexZinkM/tip-wallet/internal/model"
	"github.com/AlexZinkM/tip-wallet/internal/tx"
)

// fakeStore keeps wallet rows in memory with insert-if-absent semantics.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[string]model.Wallet
	inserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.Wallet)}
}

func storeKey(username, platform, token string) string {
	return strings.ToLower(username) + "|" + platform + "|" + token
}

func (s *fakeStore) Find(_ context.Context, username, platform, token string) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.rows[storeKey(username, platform, token)]; ok {
		copy := w
		return &copy, nil
	}
	return nil, nil
}

func (s *fakeStore) Insert(_ context.Context, w model.Wallet) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(w.Username, w.Platform, w.Token)
	if existing, ok := s.rows[key]; ok {
		copy := existing
		return &copy, nil
	}
	s.rows[key] = w
	s.inserts++
	return &w, nil
}

// fakeNodes answers balance reads and records broadcast batches.
type fakeNodes struct {
	balance        uint64
	balanceErr     error
	failBroadcast  bool
	balanceCalls   int
	broadcastCalls int
	lastBatch      []*tx.Transaction
}

func (n *fakeNodes) Balance(_ context.Context, _ model.NetworkProfile, _ string) (uint64, error) {
	n.balanceCalls++
	if n.balanceErr != nil {
		return 0, n.balanceErr
	}
	return n.balance, nil
}

func (n *fakeNodes) Broadcast(_ context.Context, profile model.NetworkProfile, transactions []*tx.Transaction) model.TransferResult {
	n.broadcastCalls++
	n.lastBatch = transactions
	if n.failBroadcast {
		return model.TransferResult{}
	}
	return model.TransferResult{Outcomes: []model.BroadcastOutcome{{
		Node:          profile.Nodes[0],
		Accepted:      true,
		TransactionID: transactions[0].ID,
	}}}
}

func (n *fakeNodes) GetFromNode(context.Context, model.NetworkProfile, string, url.Values) json.RawMessage {
	return nil
}

type fakeTicker struct {
	price string
	err   error
}

func (f *fakeTicker) Price(context.Context, string, string) (string, error) {
	return f.price, f.err
}

func testMerchantAddress(t *testing.T) string {
	t.Helper()
	address, err := crypto.AddressFromPublicKey(
		crypto.PublicKeyFromPassphrase([]byte("merchant")), 23)
	require.NoError(t, err)
	return address
}

func testNetworks(t *testing.T) *config.NetworkStore {
	t.Helper()
	content := fmt.Sprintf(`
native: ark
networks:
  ark:
    networkVersion: 23
    minValue: 2000000
    transactionFee: 300
    tickerId: ark
    nodes:
      - host: node1.example.org
        port: 4003
    stickers:
      price: "2"
      currency: usd
      address: %s
`, testMerchantAddress(t))

	path := filepath.Join(t.TempDir(), "networks.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	networks, err := config.LoadNetworks(path)
	require.NoError(t, err)
	return networks
}

func testService(t *testing.T, nodes *fakeNodes, ticker *fakeTicker) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := New(testNetworks(t), store, nodes, ticker, []byte("test secret"), "usd", zap.NewNop())
	return svc, store
}

func TestResolveIdempotent(t *testing.T) {
	svc, store := testService(t, &fakeNodes{}, &fakeTicker{})
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "Alice", "reddit", "ark")
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, "Alice", "reddit", "ark")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.inserts)
	assert.Len(t, first, crypto.AddressLength)
	assert.Equal(t, byte('A'), first[0])
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _ := testService(t, &fakeNodes{}, &fakeTicker{})
	_, err := svc.Resolve(context.Background(), "alice", "reddit", "doge")
	assert.ErrorIs(t, err, model.ErrUnknownToken)
}

func TestSendSelfTransferRejectedWithoutNodeContact(t *testing.T) {
	nodes := &fakeNodes{balance: 1_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "Alice",
		Token:          "ark",
		Amount:         "1",
	})
	assert.ErrorIs(t, err, model.ErrSelfTransfer)
	assert.Zero(t, nodes.balanceCalls)
	assert.Zero(t, nodes.broadcastCalls)
}

func TestWithdrawToOwnAddressRejected(t *testing.T) {
	nodes := &fakeNodes{balance: 1_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{})
	ctx := context.Background()

	own, err := svc.Resolve(ctx, "alice", "reddit", "ark")
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, model.WithdrawRequest{
		Username: "alice",
		Platform: "reddit",
		Token:    "ark",
		Address:  own,
		Amount:   "1",
	})
	assert.ErrorIs(t, err, model.ErrSelfTransfer)
	assert.Zero(t, nodes.broadcastCalls)
}

func TestSendInsufficientBalance(t *testing.T) {
	// balance=1, requested 21 ARK (2,100,000,000 base units), fee=300.
	nodes := &fakeNodes{balance: 1}
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "21",
	})
	assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	// Never reaches the transaction factory or the nodes.
	assert.Zero(t, nodes.broadcastCalls)
}

func TestSendAmountPlusFeeOverflow(t *testing.T) {
	// 184467440737.09551615 tokens is exactly 2^64-1 base units; adding the
	// fee must not wrap required around to a tiny number.
	nodes := &fakeNodes{balance: 1_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "184467440737.09551615",
	})
	assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	assert.Zero(t, nodes.broadcastCalls)
}

func TestSendBelowMinimum(t *testing.T) {
	nodes := &fakeNodes{balance: 1_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "0.001", // 100,000 < minValue 2,000,000
	})
	assert.ErrorIs(t, err, model.ErrBelowMinimumAmount)
	assert.Zero(t, nodes.balanceCalls)
}

func TestSendHappyPath(t *testing.T) {
	nodes := &fakeNodes{balance: 10_000_000_000}
	svc, store := testService(t, nodes, &fakeTicker{})
	ctx := context.Background()

	resp, err := svc.Send(ctx, model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "1.5",
		Memo:           "good bot",
	})
	require.NoError(t, err)
	require.Len(t, resp.Outcomes, 1)
	assert.NotEmpty(t, resp.TransactionID)

	require.Len(t, nodes.lastBatch, 1)
	sent := nodes.lastBatch[0]
	assert.Equal(t, uint64(150_000_000), sent.Amount)
	assert.Equal(t, uint64(300), sent.Fee)
	assert.Equal(t, "good bot", sent.VendorField)

	bobAddress, err := svc.Resolve(ctx, "bob", "reddit", "ark")
	require.NoError(t, err)
	assert.Equal(t, bobAddress, sent.RecipientID)
	assert.Equal(t, 2, store.inserts) // both wallets created once
}

func TestSendFiatConversion(t *testing.T) {
	nodes := &fakeNodes{balance: 10_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{price: "0.5"})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "2",
		Currency:       "usd",
	})
	require.NoError(t, err)

	// 2 usd at 0.5 usd/ark = 4 ark = 400,000,000 base units.
	require.Len(t, nodes.lastBatch, 1)
	assert.Equal(t, uint64(400_000_000), nodes.lastBatch[0].Amount)
}

func TestConversionTruncatesTowardZero(t *testing.T) {
	svc, _ := testService(t, &fakeNodes{}, &fakeTicker{price: "3"})

	profile, err := svc.networks.Profile("ark")
	require.NoError(t, err)

	units, err := svc.ToBaseUnits(context.Background(), "1", "usd", profile)
	require.NoError(t, err)
	// 1/3 ark = 33,333,333.33... base units, floored.
	assert.Equal(t, uint64(33_333_333), units)
}

func TestWithdrawFullBalance(t *testing.T) {
	nodes := &fakeNodes{balance: 1_000_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{})

	resp, err := svc.Withdraw(context.Background(), model.WithdrawRequest{
		Username:    "alice",
		Platform:    "reddit",
		Token:       "ark",
		Address:     testMerchantAddress(t),
		FullBalance: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Outcomes, 1)
	assert.True(t, resp.Outcomes[0].Accepted)
	assert.NotEmpty(t, resp.TransactionID)

	require.Len(t, nodes.lastBatch, 1)
	assert.Equal(t, uint64(999_999_999_700), nodes.lastBatch[0].Amount)
}

func TestWithdrawFullBalanceMustExceedFee(t *testing.T) {
	nodes := &fakeNodes{balance: 300} // exactly the fee
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Withdraw(context.Background(), model.WithdrawRequest{
		Username:    "alice",
		Platform:    "reddit",
		Token:       "ark",
		Address:     testMerchantAddress(t),
		FullBalance: true,
	})
	assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	assert.Zero(t, nodes.broadcastCalls)
}

func TestWithdrawRequiresAmountOrFullBalance(t *testing.T) {
	svc, _ := testService(t, &fakeNodes{}, &fakeTicker{})

	_, err := svc.Withdraw(context.Background(), model.WithdrawRequest{
		Username: "alice",
		Platform: "reddit",
		Token:    "ark",
		Address:  testMerchantAddress(t),
	})
	assert.Error(t, err)
}

func TestSendBroadcastFailed(t *testing.T) {
	nodes := &fakeNodes{balance: 10_000_000_000, failBroadcast: true}
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "1",
	})
	assert.ErrorIs(t, err, model.ErrBroadcastFailed)
	assert.Equal(t, 1, nodes.broadcastCalls)
}

func TestSendBalanceReadFailure(t *testing.T) {
	nodes := &fakeNodes{balanceErr: model.ErrNodeUnreachable}
	svc, _ := testService(t, nodes, &fakeTicker{})

	_, err := svc.Send(context.Background(), model.SendRequest{
		Sender:         "alice",
		SenderPlatform: "reddit",
		Receiver:       "bob",
		Token:          "ark",
		Amount:         "1",
	})
	assert.ErrorIs(t, err, model.ErrNodeUnreachable)
	assert.Zero(t, nodes.broadcastCalls)
}

func TestStickers(t *testing.T) {
	nodes := &fakeNodes{balance: 10_000_000_000}
	svc, _ := testService(t, nodes, &fakeTicker{price: "0.5"})

	resp, err := svc.Stickers(context.Background(), model.StickersRequest{
		Buyer:    "alice",
		Platform: "reddit",
		Token:    "ark",
		Code:     "order-1337",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TransactionID)

	require.Len(t, nodes.lastBatch, 1)
	sent := nodes.lastBatch[0]
	// 2 usd at 0.5 usd/ark.
	assert.Equal(t, uint64(400_000_000), sent.Amount)
	assert.Equal(t, testMerchantAddress(t), sent.RecipientID)
	assert.Equal(t, "order-1337", sent.VendorField)
}

func TestConcurrentResolveCreatesOneWallet(t *testing.T) {
	svc, store := testService(t, &fakeNodes{}, &fakeTicker{})
	ctx := context.Background()

	var wg sync.WaitGroup
	addresses := make([]string, 8)
	for i := range addresses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			address, err := svc.Resolve(ctx, "alice", "reddit", "ark")
			assert.NoError(t, err)
			addresses[i] = address
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.inserts)
	for _, address := range addresses[1:] {
		assert.Equal(t, addresses[0], address)
	}
}
