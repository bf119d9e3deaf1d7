package main

import "github.com/MeKo-Tech/filamentrecolor/internal/cmd"

func main() {
	cmd.Execute()
}
