package felt

// Address is a contract address on the ledger. It is a plain felt underneath
// but carries its own type so that addresses are not mixed up with arbitrary
// field elements. Equality and map-key hashing follow the raw value.
type Address Felt

func (a *Address) AsFelt() *Felt {
	return (*Felt)(a)
}

func (a *Address) String() string {
	return (*Felt)(a).String()
}

func (a *Address) Equal(b *Address) bool {
	return (*Felt)(a).Equal((*Felt)(b))
}

func (a *Address) Bytes() [32]byte {
	return (*Felt)(a).Bytes()
}

func (a Address) MarshalText() ([]byte, error) {
	return Felt(a).MarshalText()
}

func (a *Address) UnmarshalText(text []byte) error {
	return (*Felt)(a).UnmarshalText(text)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return Felt(a).MarshalJSON()
}

func (a *Address) UnmarshalJSON(data []byte) error {
	return (*Felt)(a).UnmarshalJSON(data)
}
