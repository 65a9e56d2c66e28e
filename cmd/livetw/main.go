package main

import (
	"github.com/Paintersrp/livetw/internal/cli"
	"github.com/Paintersrp/livetw/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
