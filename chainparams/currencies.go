// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"math"
	"math/big"
	"time"
)

var (
	mainPowLimit    = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)
	testnetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)
	scryptPowLimit  = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)
)

// Bitcoin is the main Bitcoin network parameter set.
var Bitcoin = &Params{
	Name:            "bitcoin",
	Net:             0xd9b4bef9,
	DefaultPort:     "8333",
	IRCChannel:      "#bitcoin",
	IRCChannels:     5,
	SeedHosts:       []string{"seed.bitcoin.sipa.be", "dnsseed.bluematt.me"},
	ProtocolVersion: 70002,

	GenesisBlock: &bitcoinGenesisBlock,
	GenesisHash:  &bitcoinGenesisHash,
	PowLimit:     mainPowLimit,
	PowLimitBits: 0x1d00ffff,

	RetargetInterval:         2016,
	TargetTimespan:           14 * 24 * time.Hour,
	TargetSpacing:            10 * time.Minute,
	RetargetAdjustmentFactor: 4,

	SubsidyInitial:           50 * 1e8,
	SubsidyReductionInterval: 210000,
	MaxMoney:                 21000000 * 1e8,
	MinRelayTxFee:            1000,

	CoinbaseMaturity: FixedCoinbaseMaturity(100),

	PubKeyHashAddrID: 0x00,
	ScriptHashAddrID: 0x05,
	PrivateKeyID:     0x80,
	HasP2SH:          true,

	BIP0016Time: 1333238400,
	BIP0030Time: 1331776000,

	BlockUpgradeAcceptWindow:    1000,
	BlockUpgradeAcceptMajority:  750,
	BlockUpgradeEnforceWindow:   1000,
	BlockUpgradeEnforceMajority: 950,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &bitcoinGenesisHash},
	},
}

// Testnet is Bitcoin's public test network, with the twenty-minute minimum-
// difficulty escape enabled.
var Testnet = &Params{
	Name:            "testnet",
	Net:             0x0709110b,
	DefaultPort:     "18333",
	IRCChannel:      "#bitcoinTEST3",
	IRCChannels:     5,
	SeedHosts:       []string{"testnet-seed.bitcoin.jonasschnelli.ch"},
	ProtocolVersion: 70002,

	GenesisBlock: &testnetGenesisBlock,
	GenesisHash:  &testnetGenesisHash,
	PowLimit:     testnetPowLimit,
	PowLimitBits: 0x1d00ffff,

	RetargetInterval:         2016,
	TargetTimespan:           14 * 24 * time.Hour,
	TargetSpacing:            10 * time.Minute,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     20 * time.Minute,

	SubsidyInitial:           50 * 1e8,
	SubsidyReductionInterval: 210000,
	MaxMoney:                 21000000 * 1e8,
	MinRelayTxFee:            1000,

	CoinbaseMaturity: FixedCoinbaseMaturity(100),

	PubKeyHashAddrID: 0x6f,
	ScriptHashAddrID: 0xc4,
	PrivateKeyID:     0xef,
	HasP2SH:          true,

	BlockUpgradeAcceptWindow:    100,
	BlockUpgradeAcceptMajority:  51,
	BlockUpgradeEnforceWindow:   100,
	BlockUpgradeEnforceMajority: 75,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &testnetGenesisHash},
	},
}

// Namecoin is a Bitcoin fork that carries a key/value name system inside
// its transactions and merge-mines with Bitcoin via an AuxPow appendix.
var Namecoin = &Params{
	Name:            "namecoin",
	Net:             0xf9beb4fe,
	DefaultPort:     "8334",
	IRCChannel:      "#namecoin",
	IRCChannels:     3,
	SeedHosts:       []string{"nmc.seed.quisquis.de"},
	ProtocolVersion: 70002,

	GenesisBlock: &bitcoinGenesisBlock,
	GenesisHash:  &bitcoinGenesisHash,
	PowLimit:     mainPowLimit,
	PowLimitBits: 0x1d00ffff,

	RetargetInterval:         2016,
	TargetTimespan:           14 * 24 * time.Hour,
	TargetSpacing:            10 * time.Minute,
	RetargetAdjustmentFactor: 4,

	SubsidyInitial:           50 * 1e8,
	SubsidyReductionInterval: 210000,
	MaxMoney:                 21000000 * 1e8,
	MinRelayTxFee:            1000,

	CoinbaseMaturity: FixedCoinbaseMaturity(100),

	PubKeyHashAddrID: 0x34,
	ScriptHashAddrID: 0x0d,
	PrivateKeyID:     0xb4,
	HasP2SH:          false,

	BlockUpgradeAcceptWindow:    1000,
	BlockUpgradeAcceptMajority:  750,
	BlockUpgradeEnforceWindow:   1000,
	BlockUpgradeEnforceMajority: 950,

	MergeMiningAdherent: true,
	NameSystemAdherent:  true,
	NameExpirationDepth: 36000,
	NameFeeSchedule:     func(height int64) int64 { return 5000 },

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &bitcoinGenesisHash},
	},
}

// Litecoin runs a scrypt proof-of-work target envelope and a faster
// 2.5-minute block spacing.
var Litecoin = &Params{
	Name:            "litecoin",
	Net:             0xdbb6c0fb,
	DefaultPort:     "9333",
	IRCChannel:      "#litecoin",
	IRCChannels:     3,
	SeedHosts:       []string{"seed-a.litecoin.loshan.co.uk"},
	ProtocolVersion: 70002,

	GenesisBlock: &bitcoinGenesisBlock,
	GenesisHash:  &bitcoinGenesisHash,
	PowLimit:     scryptPowLimit,
	PowLimitBits: 0x1e0ffff0,

	RetargetInterval:         2016,
	TargetTimespan:           84 * time.Hour,
	TargetSpacing:            150 * time.Second,
	RetargetAdjustmentFactor: 4,

	SubsidyInitial:           50 * 1e8,
	SubsidyReductionInterval: 840000,
	MaxMoney:                 84000000 * 1e8,
	MinRelayTxFee:            1000,

	CoinbaseMaturity: FixedCoinbaseMaturity(100),

	PubKeyHashAddrID: 0x30,
	ScriptHashAddrID: 0x05,
	PrivateKeyID:     0xb0,
	HasP2SH:          true,

	BlockUpgradeAcceptWindow:    1000,
	BlockUpgradeAcceptMajority:  750,
	BlockUpgradeEnforceWindow:   1000,
	BlockUpgradeEnforceMajority: 950,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &bitcoinGenesisHash},
	},
}

// dogecoinMaturity implements the height-dependent coinbase maturity:
// 30 confirmations before block 145000, then 240, then 30 again past the
// digishield retarget height.
func dogecoinMaturity(height int64) int64 {
	switch {
	case height < 145000:
		return 30
	case height < 371337:
		return 240
	default:
		return 30
	}
}

// Dogecoin retargets every block past its digishield activation height and
// carries an AuxPow merge-mining appendix.
var Dogecoin = &Params{
	Name:            "dogecoin",
	Net:             0xc0c0c0c0,
	DefaultPort:     "22556",
	IRCChannel:      "#dogecoin",
	IRCChannels:     3,
	SeedHosts:       []string{"seed.dogecoin.com"},
	ProtocolVersion: 70003,

	GenesisBlock: &bitcoinGenesisBlock,
	GenesisHash:  &bitcoinGenesisHash,
	PowLimit:     scryptPowLimit,
	PowLimitBits: 0x1e0ffff0,

	RetargetInterval:         1,
	TargetTimespan:           60 * time.Second,
	TargetSpacing:            60 * time.Second,
	RetargetAdjustmentFactor: 4,
	ReduceMinDifficulty:      true,
	MinDiffReductionTime:     2 * time.Minute,

	SubsidyInitial:           500000 * 1e8,
	SubsidyReductionInterval: 100000,
	MaxMoney:                 math.MaxInt64,
	MinRelayTxFee:            1000,

	CoinbaseMaturity: dogecoinMaturity,

	PubKeyHashAddrID: 0x1e,
	ScriptHashAddrID: 0x16,
	PrivateKeyID:     0x9e,
	HasP2SH:          true,

	BlockUpgradeAcceptWindow:    1000,
	BlockUpgradeAcceptMajority:  750,
	BlockUpgradeEnforceWindow:   1000,
	BlockUpgradeEnforceMajority: 950,

	MergeMiningAdherent: true,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &bitcoinGenesisHash},
	},
}

// Terracoin is a low-volume SHA-256d altcoin with Bitcoin's classic
// retarget rule and an unmodified address/script envelope.
var Terracoin = &Params{
	Name:            "terracoin",
	Net:             0x454d4153,
	DefaultPort:     "13333",
	IRCChannel:      "#terracoin",
	IRCChannels:     2,
	SeedHosts:       []string{"seed.terracoin.io"},
	ProtocolVersion: 70002,

	GenesisBlock: &bitcoinGenesisBlock,
	GenesisHash:  &bitcoinGenesisHash,
	PowLimit:     mainPowLimit,
	PowLimitBits: 0x1d00ffff,

	RetargetInterval:         2016,
	TargetTimespan:           14 * 24 * time.Hour,
	TargetSpacing:            2 * time.Minute,
	RetargetAdjustmentFactor: 4,

	SubsidyInitial:           20 * 1e8,
	SubsidyReductionInterval: 1050000,
	MaxMoney:                 42000000 * 1e8,
	MinRelayTxFee:            1000,

	CoinbaseMaturity: FixedCoinbaseMaturity(100),

	PubKeyHashAddrID: 0x0,
	ScriptHashAddrID: 0x5,
	PrivateKeyID:     0x80,
	HasP2SH:          true,

	BlockUpgradeAcceptWindow:    1000,
	BlockUpgradeAcceptMajority:  750,
	BlockUpgradeEnforceWindow:   1000,
	BlockUpgradeEnforceMajority: 950,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &bitcoinGenesisHash},
	},
}

// ByName resolves a currency parameter set by its lowercase name.
func ByName(name string) (*Params, bool) {
	switch name {
	case Bitcoin.Name:
		return Bitcoin, true
	case Testnet.Name:
		return Testnet, true
	case Namecoin.Name:
		return Namecoin, true
	case Litecoin.Name:
		return Litecoin, true
	case Dogecoin.Name:
		return Dogecoin, true
	case Terracoin.Name:
		return Terracoin, true
	default:
		return nil, false
	}
}
