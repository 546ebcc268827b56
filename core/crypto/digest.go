package crypto

import "github.com/kkrt-labs/katana-genesis/core/felt"

type Digest interface {
	Update(...*felt.Felt) Digest
	Finish() *felt.Felt
}
