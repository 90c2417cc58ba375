package whitelist

// Abi is the interface of the deployed Crypto Devs whitelist contract.
const Abi = `[
	{
		"inputs": [{"internalType": "uint8", "name": "_maxWhitelistedAddresses", "type": "uint8"}],
		"stateMutability": "nonpayable",
		"type": "constructor"
	},
	{
		"inputs": [],
		"name": "addAddressToWhitelist",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "maxWhitelistedAddresses",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "numAddressesWhitelisted",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "", "type": "address"}],
		"name": "whitelistedAddresses",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const (
	methodWhitelisted    = "whitelistedAddresses"
	methodNumWhitelisted = "numAddressesWhitelisted"
	methodMaxWhitelisted = "maxWhitelistedAddresses"
	methodJoin           = "addAddressToWhitelist"
)
