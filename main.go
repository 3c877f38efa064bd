package main

import "github.com/KaramelBytes/docuflow-cli/cmd"

func main() {
	cmd.Execute()
}
