package main

import (
	"flag"
	"log"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/app"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: replay <journal-file>")
	}

	if err := app.RunReplay(flag.Arg(0)); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
