// tiercode encodes, decodes and shortens tier list share codes from the shell.
//
// Usage examples:
//
//	tiercode encode "S=Blue Ice,Sour Cherry" "A=Watermelon"
//	tiercode decode U0ExLEFCMiw=
//	tiercode compress U0ExLEFCMiw=
//	tiercode decompress TT-...
//	tiercode forget
//
// Remap tables are kept in a file so compress and decompress work across runs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
