/*
Package unichan defines the interfaces shared by all packages of the
unidirectional payment channel application: storage, messages, handlers,
decorators and the context values every operation runs with.

Extensions live under x/. The paychan extension implements the channel
ledger; cash implements wallets and the coin mover used to settle
channels. Everything is glued together by the app package.
*/
package unichan
