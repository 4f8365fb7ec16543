package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mchmarny/dashd/pkg/dashboard"
	"github.com/mchmarny/dashd/pkg/menu"
)

func main() {
	app, err := dashboard.New(menu.Default())
	if err != nil {
		fmt.Printf("dashboard error: %v", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		fmt.Printf("server error: %v", err)
		os.Exit(1)
	}
}
