// Package main is the entry point for weatherctl.
package main

import "github.com/couchcryptid/weather-sync-service/internal/cli"

func main() {
	cli.Execute()
}
