package crypto

import (
	"crypto/ecdsa"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/unichan/errors"
)

// KeyPerm is the file permissions for saved private keys
const KeyPerm = 0600

// Signer is the functionality we use from a private key. No serializing,
// so that hardware devices can implement it as well.
type Signer interface {
	// SignHash signs a 32 bytes long digest.
	SignHash(hash []byte) (Signature, error)
	// Address returns the identity of this signer.
	Address() common.Address
}

// PrivateKey is a secp256k1 private key.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// GenerateKey returns a random new private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return &PrivateKey{key: key}, nil
}

// HexToKey decodes a hex encoded private key, as produced by Hex.
func HexToKey(enc string) (*PrivateKey, error) {
	key, err := ethcrypto.HexToECDSA(enc)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "malformed private key: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// LoadKey will load a private key from a file, which was previously
// written by SaveKey.
func LoadKey(filename string) (*PrivateKey, error) {
	key, err := ethcrypto.LoadECDSA(filename)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "load key %q: %s", filename, err)
	}
	return &PrivateKey{key: key}, nil
}

// SaveKey will encode the private key in hex and write to the named file.
// It will refuse to overwrite a file unless force is set.
func SaveKey(key *PrivateKey, filename string, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "refusing to overwrite %q", filename)
		}
	}
	if err := ethcrypto.SaveECDSA(filename, key.key); err != nil {
		return errors.Wrap(err, "save key")
	}
	return os.Chmod(filename, KeyPerm)
}

// Hex returns the hex encoded private key.
func (k *PrivateKey) Hex() string {
	return common.Bytes2Hex(ethcrypto.FromECDSA(k.key))
}

// Address returns the address derived from the public key.
func (k *PrivateKey) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.key.PublicKey)
}

// SignHash signs given digest. Returned signature uses the 27/28 recovery
// id convention.
func (k *PrivateKey) SignHash(hash []byte) (Signature, error) {
	raw, err := ethcrypto.Sign(hash, k.key)
	if err != nil {
		return Signature{}, errors.Wrap(err, "sign")
	}
	raw[64] += 27
	return SignatureFromBytes(raw)
}

// SignVoucher signs the claim that the remaining channel balance is
// updatedBalance.
func (k *PrivateKey) SignVoucher(updatedBalance *big.Int) (Signature, error) {
	return SignVoucher(k, updatedBalance)
}

// SignVoucher signs a voucher with any Signer.
func SignVoucher(s Signer, updatedBalance *big.Int) (Signature, error) {
	digest, err := VoucherDigest(updatedBalance)
	if err != nil {
		return Signature{}, err
	}
	return s.SignHash(SignedMessageHash(digest))
}

// Recover returns the address of the key that produced the signature over
// given hash.
func Recover(hash []byte, sig Signature) (common.Address, error) {
	v, err := sig.recoveryID()
	if err != nil {
		return common.Address{}, err
	}
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !ethcrypto.ValidateSignatureValues(v, r, s, false) {
		return common.Address{}, errors.Wrap(errors.ErrInput, "invalid signature values")
	}

	raw := sig.Bytes()
	raw[64] = v
	pub, err := ethcrypto.SigToPub(hash, raw)
	if err != nil {
		return common.Address{}, errors.Wrapf(errors.ErrInput, "cannot recover public key: %s", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
