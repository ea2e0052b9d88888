package main

import (
	"os"

	"github.com/dagnet/dagd/app"
)

func main() {
	if err := app.StartApp(); err != nil {
		os.Exit(1)
	}
}
