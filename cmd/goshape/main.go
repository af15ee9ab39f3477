package main

import "github.com/dbsmedya/goshape/cmd/goshape/cmd"

func main() {
	cmd.Execute()
}
