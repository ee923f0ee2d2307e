package contract

// Built-in IDs for the three donation contracts.
const (
	BuiltinLogic   = "donation-logic"
	BuiltinToken   = "donation-token"
	BuiltinBonding = "bonding-vault"
)

// Only the methods the client calls are listed; the deployed contracts
// expose more.
//
//	donate()                          payable
//	sell(uint256)
//	calculateReturn(uint256,uint256)  → (finalPrice, redeemableEth)
//	setCharityAddress(address)
//	sweepVault()
//	charityAddress()                  → address
//	owner()                           → address   0x8da5cb5b
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          BuiltinLogic,
		Name:        "DonationLogic",
		Description: "Donation entry point: donate, sell, charity address, vault sweep.",
		ABI:         MustParseABI(donationLogicABI),
	})
	RegisterBuiltin(BuiltinKind{
		ID:          BuiltinToken,
		Name:        "Token",
		Description: "Fungible token minted on donation and burned on sale.",
		ABI:         MustParseABI(donationTokenABI),
	})
	RegisterBuiltin(BuiltinKind{
		ID:          BuiltinBonding,
		Name:        "BondingCurveVault",
		Description: "Vault holding the ETH that backs issued tokens.",
		ABI:         MustParseABI(bondingVaultABI),
	})
}

const donationLogicABI = `[
  {"type":"function","name":"donate","inputs":[],"outputs":[],"stateMutability":"payable"},
  {"type":"function","name":"sell","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"calculateReturn","inputs":[{"name":"amount","type":"uint256"},{"name":"supply","type":"uint256"}],
   "outputs":[{"name":"finalPrice","type":"uint256"},{"name":"redeemableEth","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"setCharityAddress","inputs":[{"name":"_charityAddress","type":"address"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"sweepVault","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"charityAddress","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
  {"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"}
]`

// symbol()            → 0x95d89b41
// totalSupply()       → 0x18160ddd
// balanceOf(address)  → 0x70a08231
const donationTokenABI = `[
  {"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
  {"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"function","name":"balanceOf","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}
]`

// The vault is only ever read through its ETH balance.
const bondingVaultABI = `[
  {"type":"function","name":"owner","inputs":[],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"}
]`
