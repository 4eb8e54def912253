// Package main provides the dbmatrix CLI for discovering and resolving
// database testing profiles.
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
