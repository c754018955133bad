// Command gradectl builds pay structures from the command line.
//
//	gradectl templates
//	gradectl preview  --template corporate
//	gradectl generate --template corporate --param 100 --format table
//	gradectl generate --jobs jobs.yaml --factors factors.yaml --format xlsx --out structure.xlsx
//	gradectl score    --select education=3,experience=3
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
