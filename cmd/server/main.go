package main

import "github.com/praxisnote/transcription/internal/bootstrap"

func main() {
	bootstrap.Run()
}
