package contract

// queueABI is the read surface of the Lido withdrawal queue, which is also
// the withdrawal NFT contract.
func init() {
	RegisterBuiltin(IDWithdrawalQueue, "Lido Withdrawal Queue",
		"Withdrawal request listing and status.", queueABI)
}

const queueABI = `[
  {"type":"function","name":"getWithdrawalRequests","stateMutability":"view","inputs":[{"name":"_owner","type":"address"}],"outputs":[{"name":"requestsIds","type":"uint256[]"}]},
  {"type":"function","name":"getWithdrawalStatus","stateMutability":"view","inputs":[{"name":"_requestIds","type":"uint256[]"}],"outputs":[{"name":"statuses","type":"tuple[]","components":[
    {"name":"amountOfStETH","type":"uint256"},{"name":"amountOfShares","type":"uint256"},{"name":"owner","type":"address"},
    {"name":"timestamp","type":"uint256"},{"name":"isFinalized","type":"bool"},{"name":"isClaimed","type":"bool"}]}]}
]`
