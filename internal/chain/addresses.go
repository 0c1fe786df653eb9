// Package chain resolves deployment-specific collaborators: the well-known
// contract roles for the active network and token metadata for addresses
// seen in the feed.
package chain

import "github.com/ethereum/go-ethereum/common"

// Role names a well-known deployment contract.
type Role int

const (
	RoleController Role = iota
	RoleRebalancer
	RoleOracleStrategy
)

// Chain ids with dedicated deployments. Anything else falls back to the
// default row.
const (
	ChainZkSyncEra        = 324
	ChainZkSyncEraSepolia = 300
	ChainMantleSepolia    = 5003
	ChainBase             = 8453
	ChainBeraTestnet      = 80084
	ChainSonicTestnet     = 57054
	ChainArbitrumSepolia  = 421614
)

type deployment struct {
	controller common.Address
	rebalancer common.Address
	strategy   common.Address
}

var deployments = map[int64]deployment{
	ChainArbitrumSepolia: {
		controller: common.HexToAddress("0x6e7CC9b243fdcD152939Df2E090EDcDcf5df7356"),
		rebalancer: common.HexToAddress("0x30b4e9215322B5d0c290249126bCf96C2Ca8e948"),
		strategy:   common.HexToAddress("0x540488b54c8DE6e44Db7553c3A2C4ABEb09Fc69C"),
	},
	ChainSonicTestnet: {
		controller: common.HexToAddress("0xAEB670cDba6094C30cbA3c88DCBBA6F6d37F6032"),
		rebalancer: common.HexToAddress("0x4e4dDa36B8bBA1b4aF776bA881347c17CDAC2085"),
		strategy:   common.HexToAddress("0x7a526046c6eAE6879bcB72E6022f72c15A824063"),
	},
	ChainBase: {
		controller: common.HexToAddress("0xA694fDd88E7FEE1f5EBF878153B68ADb2ce6EbbF"),
		rebalancer: common.HexToAddress("0x13f2Ff6Cc952f4181D6c316426e9CbdA957c6482"),
		strategy:   common.HexToAddress("0x284A7A4c8Bc2873EDCa149809C1CAaaf3C4ED6eb"),
	},
	ChainBeraTestnet: {
		controller: common.HexToAddress("0x1A0E22870dE507c140B7C765a04fCCd429B8343F"),
		rebalancer: common.HexToAddress("0x7d06c636bA86BD1fc2C38B11F1e5701145CABc30"),
		strategy:   common.HexToAddress("0x7d06c636bA86BD1fc2C38B11F1e5701145CABc30"),
	},
	ChainZkSyncEra: {
		controller: common.HexToAddress("0x9aF80CC61AAd734604f139A53E22c56Cdbf9a158"),
		rebalancer: common.HexToAddress("0x9aF80CC61AAd734604f139A53E22c56Cdbf9a158"),
		strategy:   common.HexToAddress("0x9aF80CC61AAd734604f139A53E22c56Cdbf9a158"),
	},
	ChainZkSyncEraSepolia: {
		controller: common.HexToAddress("0xA253A7c6C26E0a6E7eAbaAbCD8b1cD43A2468c48"),
		rebalancer: common.HexToAddress("0xA253A7c6C26E0a6E7eAbaAbCD8b1cD43A2468c48"),
		strategy:   common.HexToAddress("0xA253A7c6C26E0a6E7eAbaAbCD8b1cD43A2468c48"),
	},
	ChainMantleSepolia: {
		controller: common.HexToAddress("0x46fbe4bf4dc4a862cdf13781D421546Ab378C113"),
		rebalancer: common.HexToAddress("0x1A0E22870dE507c140B7C765a04fCCd429B8343F"),
		strategy:   common.HexToAddress("0x1A0E22870dE507c140B7C765a04fCCd429B8343F"),
	},
}

var defaultDeployment = deployment{
	controller: common.HexToAddress("0x46fbe4bf4dc4a862cdf13781D421546Ab378C113"),
	rebalancer: common.HexToAddress("0x30b4e9215322B5d0c290249126bCf96C2Ca8e948"),
	strategy:   common.HexToAddress("0x540488b54c8DE6e44Db7553c3A2C4ABEb09Fc69C"),
}

// Roles resolves well-known contract addresses for one network.
type Roles struct {
	dep deployment
}

// NewRoles builds the resolver for a chain id. Unknown chains use the
// default deployment row.
func NewRoles(chainID int64) *Roles {
	if dep, ok := deployments[chainID]; ok {
		return &Roles{dep: dep}
	}
	return &Roles{dep: defaultDeployment}
}

// Resolve returns the address filling a role.
func (r *Roles) Resolve(role Role) common.Address {
	switch role {
	case RoleController:
		return r.dep.controller
	case RoleRebalancer:
		return r.dep.rebalancer
	default:
		return r.dep.strategy
	}
}
