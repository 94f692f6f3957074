// Command marrow builds parametric rig modules from Lisp scripts or
// saved collections and compiles them into skeletons.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
