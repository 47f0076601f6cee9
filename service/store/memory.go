package store

import (
	"context"
	"sort"
	"sync"

	"github.com/koyo-finance/exchange-backend/schema"
)

// Memory is an in-memory Store used by tests and local replays. It
// mirrors the mongo Service's semantics: loads of absent entities return
// (nil, nil) and saves are upserts.
type Memory struct {
	mu sync.Mutex

	blockHeight      int64
	tokens           map[string]schema.Token
	poolTokens       map[string]schema.PoolToken
	pools            map[string]schema.Pool
	latestPrices     map[string]schema.LatestPrice
	tokenPrices      map[string]schema.TokenPrice
	historical       map[string]schema.PoolHistoricalLiquidity
	vault            *schema.Vault
	accounts         map[string]schema.Account
	internalBalances map[string]schema.AccountInternalBalance
	swaps            map[string]schema.Swap
	joinExits        map[string]schema.JoinExit
	poolSnapshots    map[string]schema.PoolSnapshot
	tokenSnapshots   map[string]schema.TokenSnapshot
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		tokens:           make(map[string]schema.Token),
		poolTokens:       make(map[string]schema.PoolToken),
		pools:            make(map[string]schema.Pool),
		latestPrices:     make(map[string]schema.LatestPrice),
		tokenPrices:      make(map[string]schema.TokenPrice),
		historical:       make(map[string]schema.PoolHistoricalLiquidity),
		accounts:         make(map[string]schema.Account),
		internalBalances: make(map[string]schema.AccountInternalBalance),
		swaps:            make(map[string]schema.Swap),
		joinExits:        make(map[string]schema.JoinExit),
		poolSnapshots:    make(map[string]schema.PoolSnapshot),
		tokenSnapshots:   make(map[string]schema.TokenSnapshot),
	}
}

func (m *Memory) LatestBlockHeight(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockHeight, nil
}

func (m *Memory) SetLatestBlockHeight(_ context.Context, height int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockHeight = height
	return nil
}

func (m *Memory) Token(_ context.Context, id string) (*schema.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *Memory) SaveToken(_ context.Context, t *schema.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.ID] = *t
	return nil
}

func (m *Memory) PoolToken(_ context.Context, id string) (*schema.PoolToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pt, ok := m.poolTokens[id]; ok {
		return &pt, nil
	}
	return nil, nil
}

func (m *Memory) SavePoolToken(_ context.Context, pt *schema.PoolToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poolTokens[pt.ID] = *pt
	return nil
}

func (m *Memory) Pool(_ context.Context, id string) (*schema.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) SavePool(_ context.Context, p *schema.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools[p.ID] = *p
	return nil
}

func (m *Memory) Pools(context.Context) ([]schema.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps := make([]schema.Pool, 0, len(m.pools))
	for _, p := range m.pools {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps, nil
}

func (m *Memory) LatestPrice(_ context.Context, id string) (*schema.LatestPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lp, ok := m.latestPrices[id]; ok {
		return &lp, nil
	}
	return nil, nil
}

func (m *Memory) SaveLatestPrice(_ context.Context, lp *schema.LatestPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestPrices[lp.ID] = *lp
	return nil
}

func (m *Memory) LatestPrices(context.Context) ([]schema.LatestPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lps := make([]schema.LatestPrice, 0, len(m.latestPrices))
	for _, lp := range m.latestPrices {
		lps = append(lps, lp)
	}
	sort.Slice(lps, func(i, j int) bool { return lps[i].ID < lps[j].ID })
	return lps, nil
}

func (m *Memory) SaveTokenPrice(_ context.Context, tp *schema.TokenPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenPrices[tp.ID] = *tp
	return nil
}

// TokenPrices returns all recorded token price observations, for tests.
func (m *Memory) TokenPrices() []schema.TokenPrice {
	m.mu.Lock()
	defer m.mu.Unlock()
	tps := make([]schema.TokenPrice, 0, len(m.tokenPrices))
	for _, tp := range m.tokenPrices {
		tps = append(tps, tp)
	}
	sort.Slice(tps, func(i, j int) bool { return tps[i].ID < tps[j].ID })
	return tps
}

func (m *Memory) SavePoolHistoricalLiquidity(_ context.Context, phl *schema.PoolHistoricalLiquidity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historical[phl.ID] = *phl
	return nil
}

// PoolHistoricalLiquidities returns all liquidity snapshots, for tests.
func (m *Memory) PoolHistoricalLiquidities() []schema.PoolHistoricalLiquidity {
	m.mu.Lock()
	defer m.mu.Unlock()
	phls := make([]schema.PoolHistoricalLiquidity, 0, len(m.historical))
	for _, phl := range m.historical {
		phls = append(phls, phl)
	}
	sort.Slice(phls, func(i, j int) bool { return phls[i].ID < phls[j].ID })
	return phls
}

func (m *Memory) Vault(context.Context) (*schema.Vault, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vault == nil {
		return nil, nil
	}
	v := *m.vault
	return &v, nil
}

func (m *Memory) SaveVault(_ context.Context, v *schema.Vault) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vc := *v
	m.vault = &vc
	return nil
}

func (m *Memory) Account(_ context.Context, id string) (*schema.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *Memory) SaveAccount(_ context.Context, a *schema.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = *a
	return nil
}

func (m *Memory) AccountInternalBalance(_ context.Context, id string) (*schema.AccountInternalBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.internalBalances[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (m *Memory) SaveAccountInternalBalance(_ context.Context, b *schema.AccountInternalBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.internalBalances[b.ID] = *b
	return nil
}

func (m *Memory) SaveSwap(_ context.Context, s *schema.Swap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swaps[s.ID] = *s
	return nil
}

// Swaps returns all recorded swaps, for tests.
func (m *Memory) Swaps() []schema.Swap {
	m.mu.Lock()
	defer m.mu.Unlock()
	ss := make([]schema.Swap, 0, len(m.swaps))
	for _, s := range m.swaps {
		ss = append(ss, s)
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i].ID < ss[j].ID })
	return ss
}

func (m *Memory) SaveJoinExit(_ context.Context, je *schema.JoinExit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinExits[je.ID] = *je
	return nil
}

// JoinExits returns all recorded join/exit events, for tests.
func (m *Memory) JoinExits() []schema.JoinExit {
	m.mu.Lock()
	defer m.mu.Unlock()
	jes := make([]schema.JoinExit, 0, len(m.joinExits))
	for _, je := range m.joinExits {
		jes = append(jes, je)
	}
	sort.Slice(jes, func(i, j int) bool { return jes[i].ID < jes[j].ID })
	return jes
}

func (m *Memory) SavePoolSnapshot(_ context.Context, ps *schema.PoolSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poolSnapshots[ps.ID] = *ps
	return nil
}

// PoolSnapshots returns all daily pool snapshots, for tests.
func (m *Memory) PoolSnapshots() []schema.PoolSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	pss := make([]schema.PoolSnapshot, 0, len(m.poolSnapshots))
	for _, ps := range m.poolSnapshots {
		pss = append(pss, ps)
	}
	sort.Slice(pss, func(i, j int) bool { return pss[i].ID < pss[j].ID })
	return pss
}

func (m *Memory) SaveTokenSnapshot(_ context.Context, ts *schema.TokenSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenSnapshots[ts.ID] = *ts
	return nil
}

// TokenSnapshots returns all daily token snapshots, for tests.
func (m *Memory) TokenSnapshots() []schema.TokenSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	tss := make([]schema.TokenSnapshot, 0, len(m.tokenSnapshots))
	for _, ts := range m.tokenSnapshots {
		tss = append(tss, ts)
	}
	sort.Slice(tss, func(i, j int) bool { return tss[i].ID < tss[j].ID })
	return tss
}
