package main

import (
	"github.com/gallerynet/paddle/cmd"
)

func main() {
	cmd.Execute()
}
