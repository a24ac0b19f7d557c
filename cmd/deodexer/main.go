package main

import "os"

// main is the entry point for the deodexer application. Command parsing,
// configuration loading, context setup, and error printing are all handled
// through the Cobra command tree defined in root.go.
func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
