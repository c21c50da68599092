// Command inferplug serves local LLM inference as a go-plugin service and
// offers host-side tools to drive it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
