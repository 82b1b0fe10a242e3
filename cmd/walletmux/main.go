// Command walletmux serves several wallet endpoints behind one provider.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
