package main

import (
	"fmt"
	"os"

	"github.com/koyo-finance/exchange-backend/cmd/kyoex/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
