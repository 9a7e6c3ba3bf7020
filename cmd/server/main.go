package main

import "hrmaccess/internal/app/server"

func main() {
	server.Run()
}
