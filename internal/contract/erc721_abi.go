package contract

func init() {
	RegisterBuiltin(IDNFT, "ERC-721 NFT", "Minimal ERC-721: transferFrom only.", nftABI)
}

const nftABI = `[
  {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`
