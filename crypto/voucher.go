package crypto

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/unichan/errors"
)

// VoucherDigest returns keccak256 of the updated balance encoded as a 32
// bytes big endian unsigned integer, the same as keccak256(abi.encode(uint256)).
func VoucherDigest(updatedBalance *big.Int) ([]byte, error) {
	if updatedBalance == nil || updatedBalance.Sign() < 0 {
		return nil, errors.Wrap(errors.ErrAmount, "balance must be a non negative integer")
	}
	if updatedBalance.Cmp(math.MaxBig256) > 0 {
		return nil, errors.Wrap(errors.ErrOverflow, "balance exceeds 256 bits")
	}
	return ethcrypto.Keccak256(math.PaddedBigBytes(updatedBalance, 32)), nil
}

// SignedMessageHash returns the personal sign hash of a 32 bytes digest:
//
//   keccak256("\x19Ethereum Signed Message:\n32" || digest)
//
// The prefix makes the signed data distinguishable from a transaction.
func SignedMessageHash(digest []byte) []byte {
	return accounts.TextHash(digest)
}

// RecoverVoucherSigner returns the identity that signed a voucher claiming
// updatedBalance as the remaining channel balance.
func RecoverVoucherSigner(updatedBalance *big.Int, sig Signature) (common.Address, error) {
	digest, err := VoucherDigest(updatedBalance)
	if err != nil {
		return common.Address{}, err
	}
	return Recover(SignedMessageHash(digest), sig)
}
