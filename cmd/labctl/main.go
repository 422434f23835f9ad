// Package main provides the labctl CLI for managing the lab's snpEff
// toolchain: installation, versioned tool profiles, and custom viral
// genome databases.
package main

func main() {
	Execute()
}
