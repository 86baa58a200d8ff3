// Copyright (c) 2026 FRA-222 / OpenSailingRC
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/app"
)

func main() {
	listen := flag.String("listen", ":17017", "UDP address to listen on for fix broadcasts")
	flag.Parse()

	log.Println("starting BoatGPS console (broadcast listener)")

	if err := app.RunConsole(*listen); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
