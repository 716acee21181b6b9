package main

import (
	"convert-service/app"
)

func main() {
	app.Run()
}
