// Command slacksweep scans a raw disk image against a directory of pattern
// files, reporting the best fractional match of every pattern sector found
// anywhere on the image.
package main

import "github.com/sergev/slacksweep/cmd"

func main() {
	cmd.Execute()
}
