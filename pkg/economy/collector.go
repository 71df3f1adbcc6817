package economy

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/mirror"
)

// MirrorReader is the part of the mirror client the collector reads from
type MirrorReader interface {
	GetToken(ctx context.Context, tokenID string) (*mirror.Token, error)
	GetAccount(ctx context.Context, idOrAddress string) (*mirror.Account, error)
	GetAccountTokens(ctx context.Context, accountID, tokenID string) ([]mirror.TokenBalance, error)
}

// Querier runs read-only contract calls
type Querier interface {
	Query(ctx context.Context, contract *contracts.ContractInstance, method string, args ...any) ([]any, error)
}

// Resolver binds a contract type to its configured deployment
type Resolver interface {
	ResolveContract(t contracts.ContractType, override string) (*contracts.ContractInstance, error)
}

type CollectorConfig struct {
	Network     string
	LazyTokenID string
	Mirror      MirrorReader
	Querier     Querier
	Resolver    Resolver
	// Registry binds the mission addresses returned by the factory
	Registry *contracts.ContractRegistry
	Logger   iface.Logger
	Progress iface.ProgressTracker
}

// Collector reads every economy section into a Snapshot
type Collector struct {
	cfg CollectorConfig
	log iface.Logger
}

func NewCollector(cfg CollectorConfig) (*Collector, error) {
	if cfg.Mirror == nil || cfg.Querier == nil || cfg.Resolver == nil {
		return nil, errors.New("economy: collector needs a mirror client, querier and resolver")
	}
	if cfg.Registry == nil {
		cfg.Registry = contracts.NewContractRegistry("")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Collector{cfg: cfg, log: log}, nil
}

// Collect reads all sections. A failing section is recorded in
// Snapshot.Errors and the remaining sections are still read. The error is
// non-nil only when ctx is done.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot(c.cfg.Network)
	steps := []struct {
		name  string
		label string
		read  func(context.Context, *Snapshot) error
	}{
		{SectionLazyToken, "LAZY token", c.readLazyToken},
		{SectionGasStation, "Lazy Gas Station", c.readGasStation},
		{SectionStaking, "NFT staking", c.readStaking},
		{SectionMissions, "Missions", c.readMissions},
		{SectionBoost, "Boost manager", c.readBoost},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		c.log.Debug("economy: reading %s", step.name)
		if err := step.read(ctx, snap); err != nil {
			c.log.Warn("economy: %s section failed: %v", step.name, err)
			snap.Fail(step.name, err)
		}
		if c.cfg.Progress != nil {
			c.cfg.Progress.Set(step.name, 100, step.label)
			c.cfg.Progress.Render()
		}
	}
	return snap, ctx.Err()
}

func (c *Collector) readLazyToken(ctx context.Context, snap *Snapshot) error {
	if c.cfg.LazyTokenID == "" {
		return errors.New("lazy token id not configured")
	}
	tok, err := c.cfg.Mirror.GetToken(ctx, c.cfg.LazyTokenID)
	if err != nil {
		return err
	}
	snap.LazyToken = &LazyToken{
		TokenID:     tok.TokenID,
		Name:        tok.Name,
		Symbol:      tok.Symbol,
		Decimals:    tok.DecimalsInt(),
		TotalSupply: tok.TotalSupply,
		Treasury:    tok.TreasuryAccountID,
	}
	return nil
}

func (c *Collector) readGasStation(ctx context.Context, snap *Snapshot) error {
	inst, err := c.cfg.Resolver.ResolveContract(contracts.LazyGasStationContract, "")
	if err != nil {
		return err
	}
	id := contractID(inst)
	acct, err := c.cfg.Mirror.GetAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	gs := &GasStation{ContractID: id, HbarBalance: acct.Balance.Balance}

	if c.cfg.LazyTokenID != "" {
		balances, err := c.cfg.Mirror.GetAccountTokens(ctx, id, c.cfg.LazyTokenID)
		if err != nil {
			return fmt.Errorf("lazy balance: %w", err)
		}
		for _, b := range balances {
			if b.TokenID == c.cfg.LazyTokenID {
				gs.LazyBalance = b.Balance
			}
		}
	}

	burn, err := c.queryInt(ctx, inst, "burnPercentage")
	if err != nil {
		return err
	}
	gs.BurnPercentage = burn
	snap.GasStation = gs
	return nil
}

func (c *Collector) readStaking(ctx context.Context, snap *Snapshot) error {
	inst, err := c.cfg.Resolver.ResolveContract(contracts.LazyNFTStakingContract, "")
	if err != nil {
		return err
	}
	st := &Staking{ContractID: contractID(inst)}
	if st.TotalItemsStaked, err = c.queryInt(ctx, inst, "totalItemsStaked"); err != nil {
		return err
	}
	collections, err := c.queryAddresses(ctx, inst, "getStakableCollections")
	if err != nil {
		return err
	}
	st.Collections = make([]string, 0, len(collections))
	for _, addr := range collections {
		st.Collections = append(st.Collections, idOrHex(addr))
	}
	if st.DistributionPeriod, err = c.queryInt(ctx, inst, "distributionPeriod"); err != nil {
		return err
	}
	if rate, err := c.queryInt(ctx, inst, "boostRate"); err == nil {
		st.BoostRate = &rate
	} else {
		c.log.Debug("economy: boostRate unavailable: %v", err)
	}
	snap.Staking = st
	return nil
}

func (c *Collector) readMissions(ctx context.Context, snap *Snapshot) error {
	factory, err := c.cfg.Resolver.ResolveContract(contracts.MissionFactoryContract, "")
	if err != nil {
		return err
	}
	deployed, err := c.queryAddresses(ctx, factory, "getDeployedMissions")
	if err != nil {
		return err
	}

	ms := &MissionStats{
		FactoryID: contractID(factory),
		Count:     len(deployed),
		Live:      make([]MissionSummary, 0, len(deployed)),
	}
	for _, addr := range deployed {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary := c.readMission(ctx, addr)
		if summary.Error == "" {
			ms.SlotsAvailable += summary.SlotsRemaining
			ms.TotalSlots += summary.SlotsRemaining + summary.Participants
		}
		ms.Live = append(ms.Live, summary)
	}
	snap.Missions = ms
	return nil
}

func (c *Collector) readMission(ctx context.Context, addr common.Address) MissionSummary {
	summary := MissionSummary{Address: addr.Hex()}
	if id, err := hedera.EntityIDFromEVMAddress(addr); err == nil {
		summary.ContractID = id.String()
	}
	inst, err := c.cfg.Registry.RegisterContract(contracts.ContractInfo{
		Type:       contracts.MissionContract,
		Address:    addr,
		ContractID: summary.ContractID,
	})
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	if summary.SlotsRemaining, err = c.queryInt(ctx, inst, "getSlotsRemaining"); err != nil {
		summary.Error = err.Error()
		return summary
	}
	users, err := c.queryAddresses(ctx, inst, "getUsersOnMission")
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	summary.Participants = int64(len(users))
	if fee, err := c.queryBig(ctx, inst, "entryFee"); err == nil {
		summary.EntryFee = fee.String()
	}
	return summary
}

func (c *Collector) readBoost(ctx context.Context, snap *Snapshot) error {
	inst, err := c.cfg.Resolver.ResolveContract(contracts.BoostManagerContract, "")
	if err != nil {
		return err
	}
	cost, err := c.queryBig(ctx, inst, "lazyBoostCost")
	if err != nil {
		return err
	}
	reduction, err := c.queryInt(ctx, inst, "lazyBoostReduction")
	if err != nil {
		return err
	}
	snap.Boost = &Boost{
		ContractID:           contractID(inst),
		LazyCost:             cost.String(),
		LazyReductionPercent: reduction,
	}
	return nil
}

func (c *Collector) queryOne(ctx context.Context, inst *contracts.ContractInstance, method string) (any, error) {
	out, err := c.cfg.Querier.Query(ctx, inst, method)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out[0], nil
}

func (c *Collector) queryBig(ctx context.Context, inst *contracts.ContractInstance, method string) (*big.Int, error) {
	v, err := c.queryOne(ctx, inst, method)
	if err != nil {
		return nil, err
	}
	n, err := toBig(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return n, nil
}

func (c *Collector) queryInt(ctx context.Context, inst *contracts.ContractInstance, method string) (int64, error) {
	n, err := c.queryBig(ctx, inst, method)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("%s: value %s overflows int64", method, n)
	}
	return n.Int64(), nil
}

func (c *Collector) queryAddresses(ctx context.Context, inst *contracts.ContractInstance, method string) ([]common.Address, error) {
	v, err := c.queryOne(ctx, inst, method)
	if err != nil {
		return nil, err
	}
	addrs, ok := v.([]common.Address)
	if !ok {
		return nil, fmt.Errorf("%s: expected address[], got %T", method, v)
	}
	return addrs, nil
}

func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	}
	return nil, fmt.Errorf("expected an integer, got %T", v)
}

func contractID(inst *contracts.ContractInstance) string {
	if inst.Info.ContractID != "" {
		return inst.Info.ContractID
	}
	return idOrHex(inst.Info.Address)
}

func idOrHex(addr common.Address) string {
	if id, err := hedera.EntityIDFromEVMAddress(addr); err == nil {
		return id.String()
	}
	return addr.Hex()
}
