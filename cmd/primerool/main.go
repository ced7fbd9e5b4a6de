// cmd/primerool/main.go
package main

import (
	"os"

	"github.com/KowalskiBio/Primerool/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args, os.Stdout, os.Stderr))
}
