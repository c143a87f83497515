package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/unichan/crypto"
	"github.com/iov-one/unichan/x/paychan"
)

func cmdSignVoucher(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign a voucher that sets the remaining balance of your channel, and print it
as JSON. The channel owner can withdraw the difference between the channel
balance and the voucher balance.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use UNICHAN_PRIV_KEY environment variable to set it.")
		balanceFl = flAmount(fl, "balance", "0", "Remaining balance of the channel, decimal or 0x prefixed hex.")
	)
	fl.Parse(args)

	key, err := crypto.LoadKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	voucher, err := paychan.NewVoucher(key, balanceFl)
	if err != nil {
		return fmt.Errorf("cannot sign voucher: %s", err)
	}
	return json.NewEncoder(output).Encode(voucher)
}

func cmdRecoverSigner(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a JSON voucher from the input and print the address of its signer.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	var voucher paychan.Voucher
	if err := json.NewDecoder(input).Decode(&voucher); err != nil {
		return fmt.Errorf("cannot decode voucher: %s", err)
	}
	if err := voucher.Validate(); err != nil {
		return fmt.Errorf("invalid voucher: %s", err)
	}
	signer, err := voucher.Signer()
	if err != nil {
		return fmt.Errorf("cannot recover signer: %s", err)
	}
	_, err = fmt.Fprintln(output, signer.Hex())
	return err
}
