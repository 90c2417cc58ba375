package network

import (
	"fmt"
	"math/big"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Network struct {
	ChainId uint64 `json:"chainId"`
	Name    string `json:"name"`
}

var (
	Mainnet = Network{1, "mainnet"}
	Goerli  = Network{5, "goerli"}
	Sepolia = Network{11155111, "sepolia"}
	Holesky = Network{17000, "holesky"}
	Polygon = Network{137, "polygon"}
	Local   = Network{1337, "localhost"}
	Anvil   = Network{31337, "anvil"}
)

var known = map[uint64]Network{
	Mainnet.ChainId: Mainnet,
	Goerli.ChainId:  Goerli,
	Sepolia.ChainId: Sepolia,
	Holesky.ChainId: Holesky,
	Polygon.ChainId: Polygon,
	Local.ChainId:   Local,
	Anvil.ChainId:   Anvil,
}

// ByChainId never fails, unknown chains get a generated name.
func ByChainId(chainId uint64) Network {
	if n, ok := known[chainId]; ok {
		return n
	}

	return Network{chainId, fmt.Sprintf("chain-%d", chainId)}
}

func FromBig(chainId *big.Int) Network {
	if chainId == nil || !chainId.IsUint64() {
		return Network{}
	}

	return ByChainId(chainId.Uint64())
}

// Title builds its own Caser, a Caser is stateful and not safe for concurrent use.
func (n Network) Title() string {
	return cases.Title(language.English).String(n.Name)
}

func (n Network) BigChainId() *big.Int {
	return new(big.Int).SetUint64(n.ChainId)
}

func (n Network) String() string {
	return fmt.Sprintf("%s (%d)", n.Name, n.ChainId)
}
