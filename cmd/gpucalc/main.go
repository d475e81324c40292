// Package main provides the gpucalc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/gpucalc/gpucalc/internal/device"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("gpucalc %s\n", version)
			return
		case "adapters":
			listAdapters()
			return
		}
	}

	fmt.Println("gpucalc - sequential GPU compute for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version     Show version")
	fmt.Println("  adapters    List available GPU adapters")
}

func listAdapters() {
	adapters, err := device.ListAdapters()
	if err != nil {
		fmt.Fprintf(os.Stderr, "no GPU adapters available: %v\n", err)
		os.Exit(1)
	}
	for i, info := range adapters {
		fmt.Printf("Adapter %d:\n", i)
		fmt.Printf("  Vendor:       %s\n", info.Vendor)
		fmt.Printf("  Device:       %s\n", info.Device)
		fmt.Printf("  Description:  %s\n", info.Description)
		fmt.Printf("  Architecture: %s\n", info.Architecture)
		fmt.Printf("  Backend:      %v\n", info.BackendType)
		fmt.Printf("  Type:         %v\n", info.AdapterType)
	}
}
