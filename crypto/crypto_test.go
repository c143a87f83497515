package crypto

import (
	"bytes"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/unichan/chantest/assert"
	"github.com/iov-one/unichan/errors"
)

func TestWellKnownKeyAddress(t *testing.T) {
	key, err := HexToKey("0000000000000000000000000000000000000000000000000000000000000001")
	assert.Nil(t, err)
	want := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	assert.Equal(t, want, key.Address())
}

func TestSignedMessageHashPrefix(t *testing.T) {
	digest, err := VoucherDigest(big.NewInt(40))
	assert.Nil(t, err)

	manual := ethcrypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), digest)
	if !bytes.Equal(manual, SignedMessageHash(digest)) {
		t.Fatal("signed message hash does not follow the personal sign convention")
	}

	encoded := make([]byte, 32)
	encoded[31] = 40
	if !bytes.Equal(ethcrypto.Keccak256(encoded), digest) {
		t.Fatal("digest must hash a 32 bytes big endian integer")
	}
}

func TestVoucherDigestRejectsInvalidBalance(t *testing.T) {
	_, err := VoucherDigest(big.NewInt(-1))
	assert.IsErr(t, errors.ErrAmount, err)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = VoucherDigest(tooBig)
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestSignAndRecoverVoucher(t *testing.T) {
	key, err := GenerateKey()
	assert.Nil(t, err)

	sig, err := key.SignVoucher(big.NewInt(40))
	assert.Nil(t, err)
	if sig.V != 27 && sig.V != 28 {
		t.Fatalf("unexpected recovery id %d", sig.V)
	}

	signer, err := RecoverVoucherSigner(big.NewInt(40), sig)
	assert.Nil(t, err)
	assert.Equal(t, key.Address(), signer)

	// Recovery id in the 0/1 form is accepted as well.
	sig.V -= 27
	signer, err = RecoverVoucherSigner(big.NewInt(40), sig)
	assert.Nil(t, err)
	assert.Equal(t, key.Address(), signer)
}

func TestTamperedVoucherRecoversAnotherIdentity(t *testing.T) {
	key, err := GenerateKey()
	assert.Nil(t, err)
	sig, err := key.SignVoucher(big.NewInt(40))
	assert.Nil(t, err)

	cases := map[string]struct {
		balance *big.Int
		sig     func() Signature
	}{
		"balance": {
			balance: big.NewInt(39),
			sig:     func() Signature { return sig },
		},
		"r": {
			balance: big.NewInt(40),
			sig:     func() Signature { s := sig; s.R[31] ^= 0x01; return s },
		},
		"s": {
			balance: big.NewInt(40),
			sig:     func() Signature { s := sig; s.S[31] ^= 0x01; return s },
		},
		"v flipped": {
			balance: big.NewInt(40),
			sig:     func() Signature { s := sig; s.V ^= 0x01; return s },
		},
		"v out of range": {
			balance: big.NewInt(40),
			sig:     func() Signature { s := sig; s.V = 35; return s },
		},
		"zero signature": {
			balance: big.NewInt(40),
			sig:     func() Signature { return Signature{} },
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			signer, err := RecoverVoucherSigner(tc.balance, tc.sig())
			if err == nil && signer == key.Address() {
				t.Fatal("tampered voucher recovered the original signer")
			}
		})
	}
}

func TestSignatureEncoding(t *testing.T) {
	key, err := GenerateKey()
	assert.Nil(t, err)
	sig, err := key.SignVoucher(big.NewInt(1))
	assert.Nil(t, err)

	parsed, err := ParseSignature(sig.String())
	assert.Nil(t, err)
	assert.Equal(t, sig, parsed)

	raw, err := sig.MarshalJSON()
	assert.Nil(t, err)
	var decoded Signature
	assert.Nil(t, decoded.UnmarshalJSON(raw))
	assert.Equal(t, sig, decoded)

	if !strings.HasPrefix(string(raw), `"0x`) {
		t.Fatalf("want 0x prefixed JSON string, got %s", raw)
	}

	malformed := map[string]string{
		"too short":      "0xdeadbeef",
		"missing prefix": sig.String()[2:],
		"odd length":     sig.String()[:len(sig.String())-1],
		"not hex":        "0x" + strings.Repeat("zz", SignatureLength),
	}
	for name, enc := range malformed {
		if _, err := ParseSignature(enc); !errors.ErrInput.Is(err) {
			t.Fatalf("%s: want input error, got %v", name, err)
		}
	}
	assert.IsErr(t, errors.ErrInput, decoded.UnmarshalJSON([]byte(`42`)))
}

func TestSaveAndLoadKey(t *testing.T) {
	key, err := GenerateKey()
	assert.Nil(t, err)

	path := filepath.Join(t.TempDir(), "payer.key")
	assert.Nil(t, SaveKey(key, path, false))
	assert.IsErr(t, errors.ErrDuplicate, SaveKey(key, path, false))

	loaded, err := LoadKey(path)
	assert.Nil(t, err)
	assert.Equal(t, key.Address(), loaded.Address())
	assert.Equal(t, key.Hex(), loaded.Hex())
}
