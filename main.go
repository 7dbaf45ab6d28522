package main

import "github.com/LegacyCodeHQ/quire/cmd"

func main() {
	cmd.Execute()
}
