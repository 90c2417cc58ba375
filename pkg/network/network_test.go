package network

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByChainId(t *testing.T) {
	assert.Equal(t, Goerli, ByChainId(5))
	assert.Equal(t, "Goerli", ByChainId(5).Title())
	assert.Equal(t, Network{ChainId: 42, Name: "chain-42"}, ByChainId(42))
}

func TestFromBig(t *testing.T) {
	assert.Equal(t, Sepolia, FromBig(big.NewInt(11155111)))
	assert.Equal(t, Network{}, FromBig(nil))
	assert.Equal(t, Network{}, FromBig(new(big.Int).Lsh(big.NewInt(1), 70)))
}

func TestBigChainIdRoundTrip(t *testing.T) {
	assert.Equal(t, Goerli, FromBig(Goerli.BigChainId()))
	assert.Equal(t, "goerli (5)", Goerli.String())
}

func TestTitleConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	titles := make([]string, 8)
	for i := range titles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				titles[i] = Goerli.Title()
			}
		}(i)
	}
	wg.Wait()

	for _, title := range titles {
		assert.Equal(t, "Goerli", title)
	}
}
