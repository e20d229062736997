package main

import (
	"github.com/mindloom/insightserver/cmd"
)

func main() {
	cmd.Execute()
}
