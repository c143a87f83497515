/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension owns one configuration singleton, keyed by its package name.
The value is read from the "conf" section of the genesis file, validated and
persisted with InitConfig, and later read back with Load.

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Application must be
terminated and configured correctly.
*/
package gconf
