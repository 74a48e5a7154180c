package main

import (
	"log"
	"os"
)

func main() {
	if err := buildArguments().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
