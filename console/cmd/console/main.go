package main

import "github.com/Krimson/vitals-console/console/cmd/console/command"

// @title Vitals Console Board API
// @version 1.0
// @description Board server of the vitals console: dashboard, analysis, wallet and civic steps panels.

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	command.Execute()
}
