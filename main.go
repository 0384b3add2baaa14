package main

import (
	"github.com/dolittle/data-pipeline/cmd"
)

func main() {
	cmd.Execute()
}
