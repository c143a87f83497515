/*
Package cash keeps the native balance of every account.

There is no logic in the tokens, except that the balance of any account may
not go below zero nor above the uint256 range. Thus, this implementation is
referred to as cash. Simple and safe.

Other extensions move value between accounts through a CoinMover, and every
move either fully succeeds or leaves both wallets untouched.
*/
package cash
