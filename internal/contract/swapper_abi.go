package contract

// swapperABI is the swapper contract surface: owner controls, the allow-list,
// ETH/stETH deposits and withdrawals, per-account balances and the
// generic execute() used to move NFTs out of the contract.
func init() {
	RegisterBuiltin(IDSwapper, "Swapper",
		"ETH/stETH swapper with owner and allow-list controls.", swapperABI)
}

const swapperABI = `[
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"allowed","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"allow","stateMutability":"nonpayable","inputs":[{"name":"_address","type":"address"},{"name":"_allowed","type":"bool"}],"outputs":[]},
  {"type":"function","name":"balances","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getEthBalance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getStethBalance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalEth","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawEth","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawSteth","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"depositEth","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"depositSteth","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"_to","type":"address"},{"name":"value","type":"uint256"},{"name":"_data","type":"bytes"}],"outputs":[{"name":"","type":"bytes"}]}
]`
