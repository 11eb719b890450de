// Command doxycov reports API documentation coverage from Doxygen XML output.
package main

import (
	"os"

	"github.com/huangsam/doxycov/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
