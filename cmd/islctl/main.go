package main

import (
	"context"
	"fmt"
	"os"

	"isl-backend/internal/cli"
)

func main() {
	app, err := cli.DefaultApp()
	if err != nil {
		fmt.Println("❌ Catalog error:", err)
		os.Exit(1)
	}

	if err := cli.NewRootCmd(app).ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
