package main

import (
	"github.com/adeputra/pharmacy-inventory/cmd"
)

func main() {
	cmd.Execute()
}
