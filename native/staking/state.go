package staking

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// PoolState is the serialisable image of one tier's pool.
type PoolState struct {
	Apr     uint64                  `json:"apr"`
	Reserve string                  `json:"reserve"`
	Stakes  map[string]*StakeRecord `json:"stakes,omitempty"`
}

// ModuleState is the serialisable image of the whole staking engine.
type ModuleState struct {
	Pools map[string]PoolState `json:"pools"`
}

// ExportState captures every pool, keyed by tier name.
func (e *Engine) ExportState() ModuleState {
	ms := ModuleState{Pools: make(map[string]PoolState, len(e.pools))}
	for tier, p := range e.pools {
		ps := PoolState{
			Apr:     p.apr,
			Reserve: p.reserve.String(),
			Stakes:  make(map[string]*StakeRecord, len(p.stakes)),
		}
		for addr, rec := range p.stakes {
			ps.Stakes[hex.EncodeToString(addr[:])] = rec.Clone()
		}
		ms.Pools[tier.String()] = ps
	}
	return ms
}

// RestoreState replaces the engine's pools with the supplied image.
func (e *Engine) RestoreState(ms ModuleState) error {
	pools := make(map[Tier]*pool, len(e.pools))
	for _, tier := range Tiers() {
		ps, ok := ms.Pools[tier.String()]
		if !ok {
			return fmt.Errorf("staking: snapshot missing pool %q", tier)
		}
		if ps.Apr == 0 {
			return ErrInvalidApr
		}
		reserve, ok := new(big.Int).SetString(ps.Reserve, 10)
		if !ok {
			return fmt.Errorf("staking: invalid reserve %q", ps.Reserve)
		}
		p := newPool(ps.Apr)
		p.reserve = reserve
		for key, rec := range ps.Stakes {
			raw, err := hex.DecodeString(key)
			if err != nil || len(raw) != 20 {
				return fmt.Errorf("staking: invalid stake key %q", key)
			}
			var addr [20]byte
			copy(addr[:], raw)
			p.stakes[addr] = rec.Clone()
		}
		pools[tier] = p
	}
	e.pools = pools
	return nil
}
