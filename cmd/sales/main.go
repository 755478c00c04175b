package main

import (
	"fmt"
	"os"

	app "github.com/erpcompany/erp"
	"github.com/erpcompany/erp/autoconfig"
	"github.com/erpcompany/erp/core"
)

const name = "sales"

func options() []core.Option {
	return []core.Option{
		core.WithName(name),
		core.WithExclude(autoconfig.DataSource),
	}
}

func main() {
	if err := app.Run(os.Args[1:], options()...); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
}
