package token2022

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

// fakeLedger answers rent and account queries locally so engine tests never
// touch a live node. Rent follows the linear on-chain formula: a flat base
// plus a per-byte rate.
type fakeLedger struct {
	baseRent        uint64
	lamportsPerByte uint64

	rentCalls    int
	accountCalls int

	rentErr    error
	accountErr error

	accounts map[string][]byte
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		baseRent:        890880,
		lamportsPerByte: 6960,
		accounts:        make(map[string][]byte),
	}
}

func (f *fakeLedger) rentFor(size uint64) uint64 {
	return f.baseRent + size*f.lamportsPerByte
}

func (f *fakeLedger) setAccount(address ed25519.PublicKey, data []byte) {
	f.accounts[string(address)] = data
}

func (f *fakeLedger) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	f.rentCalls++
	if f.rentErr != nil {
		return 0, f.rentErr
	}
	return f.rentFor(size), nil
}

func (f *fakeLedger) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	f.accountCalls++
	if f.accountErr != nil {
		return solana.AccountInfo{}, f.accountErr
	}

	data, ok := f.accounts[string(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}

	return solana.AccountInfo{
		Data:     data,
		Owner:    ProgramKey,
		Lamports: f.rentFor(uint64(len(data))),
	}, nil
}

// mintDataWithMetadata assembles raw mint account data carrying a metadata
// pointer and the given metadata record in its TLV region.
func mintDataWithMetadata(metadata *Metadata) []byte {
	mint := Mint{
		Decimals:      6,
		IsInitialized: true,
	}

	data := make([]byte, ExtensionStartOffset)
	copy(data, mint.Marshal())
	data[AccountSize] = 1 // account type: mint

	pointer := make([]byte, tlvHeaderSize+64)
	binary.LittleEndian.PutUint16(pointer, uint16(ExtensionMetadataPointer))
	binary.LittleEndian.PutUint16(pointer[2:], 64)
	data = append(data, pointer...)

	payload := metadata.Marshal()
	header := make([]byte, tlvHeaderSize)
	binary.LittleEndian.PutUint16(header, uint16(ExtensionTokenMetadata))
	binary.LittleEndian.PutUint16(header[2:], uint16(len(payload)))
	data = append(data, header...)
	data = append(data, payload...)

	return data
}
