package main

import "github.com/bitebuilder/bite-cli/cmd/bite"

func main() {
	bite.Execute()
}
