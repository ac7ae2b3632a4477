package main

import (
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/cli"
)

func main() {
	cli.Execute()
}
