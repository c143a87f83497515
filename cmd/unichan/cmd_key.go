package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/unichan/crypto"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new secp256k1 private key and print its address.

When successful a new file with the hex encoded private key is created. This
command fails if the private key file already exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use UNICHAN_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("cannot generate key: %s", err)
	}
	// Never overwrite an existing key. User must delete it manually
	// first so that such crucial data is not lost by a bad command usage.
	if err := crypto.SaveKey(key, *keyPathFl, false); err != nil {
		return fmt.Errorf("cannot save private key: %s", err)
	}
	_, err = fmt.Fprintln(output, key.Address().Hex())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use UNICHAN_PRIV_KEY environment variable to set it.")
	)
	fl.Parse(args)

	key, err := crypto.LoadKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	_, err = fmt.Fprintln(output, key.Address().Hex())
	return err
}
