package main

import (
	"fmt"
	"os"

	"housekeeper/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "housekeeper:", err)
		os.Exit(1)
	}
}
