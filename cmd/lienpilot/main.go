// Command lienpilot is the LienPilot command line.
package main

import (
	"os"

	"github.com/turtacn/LienPilot/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(cli.NewRootCommand(nil)); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
