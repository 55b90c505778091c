package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitETHTransfer  = uint64(21_000)
	GasLimitERC20Call    = uint64(100_000) // approve / transferFrom / permit
	GasLimitContractCall = uint64(300_000) // swapper calls, execute-wrapped NFT transfer
)

// Timeouts. Receipt waits deliberately have none; they end on Ctrl-C.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark
	ReadTimeout      = 30 * time.Second // one round of dashboard / probe reads
)

const (
	defaultPollSeconds = 2
	defaultAuthWindow  = 3600
)
