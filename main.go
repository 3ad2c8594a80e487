// ABOUTME: Entry point for the intranet CLI
// ABOUTME: Terminal client for the collaborator directory of the administrative intranet

package main

import (
	"fmt"
	"os"

	"github.com/EdwinJoye/cda31-dev3-frontend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
