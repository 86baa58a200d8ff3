// Copyright (c) 2026 FRA-222 / OpenSailingRC
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/app"
	"github.com/FRA-222/OpenSailingRC-BoatGPS/internal/config"
)

func main() {
	log.Println("starting OpenSailingRC BoatGPS tracker")

	if err := config.InitGlobal("boatgps_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunTracker(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
