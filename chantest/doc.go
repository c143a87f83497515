/*
Package chantest provides test doubles and helpers shared by the tests of
all packages: a manually driven clock, secp256k1 keys, context builders and
mock handlers, decorators and transactions.
*/
package chantest
