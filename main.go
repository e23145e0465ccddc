// intfinder: a scatter-gather tool for running Integron Finder on large
// replicon sequence files.
// Copyright (c) 2021 the Integron-Finder pipeline contributors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// intfinder runs the Integron Finder detection tool over large
// replicon sequence files by splitting them into chunks, analyzing the
// chunks in parallel, and merging the per-chunk findings into one
// consolidated result per replicon.
//
// The split, detect, and merge stages are also available as separate
// commands, so an external workflow runner can drive the fan-out
// itself.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/g1o/Integron-Finder/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: run, split, detect, merge")
	fmt.Fprint(os.Stderr, "\n", cmd.RunHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.SplitHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.DetectHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.MergeHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmd.Run()
	case "split":
		err = cmd.Split()
	case "detect":
		err = cmd.Detect()
	case "merge":
		err = cmd.Merge()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command: %v.\n", os.Args[1])
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
