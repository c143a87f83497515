/*
Package paychan implements a unidirectional payment channel ledger.

A payer locks funds in a channel and later authorizes payouts to the ledger
owner by signing vouchers off the ledger. A voucher states the remaining
balance of the channel, so only the latest one needs to be submitted and
anyone may submit it: the signature, not the caller, proves authorization.

The payer can reclaim unspent funds by challenging the channel. This starts a
dispute window during which the owner may still settle a last voucher. Once
the window passed, the payer defunds the channel and receives the remaining
balance.

	Absent -> fund -> Open -> challenge -> Disputing -> defund -> Absent

Every operation is atomic. Channel state, fund transfers and the event log
are written together or not at all.
*/
package paychan
