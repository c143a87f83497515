package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
)

// flAmount returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// Both decimal and 0x prefixed hex values are accepted. If given default
// value cannot be deserialized, process is terminated.
func flAmount(fl *flag.FlagSet, name, defaultVal, usage string) *big.Int {
	var a amountFlag
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q amount flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return (*big.Int)(&a)
}

// amountFlag is a non negative 256 bit integer flag value.
type amountFlag big.Int

var _ flag.Value = (*amountFlag)(nil)

func (a *amountFlag) String() string {
	return (*big.Int)(a).String()
}

func (a *amountFlag) Set(raw string) error {
	var v math.HexOrDecimal256
	if err := v.UnmarshalText([]byte(raw)); err != nil {
		return err
	}
	if (*big.Int)(&v).Sign() < 0 {
		return fmt.Errorf("negative amount %s", raw)
	}
	(*big.Int)(a).Set((*big.Int)(&v))
	return nil
}
