//go:build tinygo

package main

import (
	"acorn/app"
	"acorn/hal"
	"acorn/internal/config"
)

func main() {
	h := hal.New()
	if err := app.Run(h, config.Default()); err != nil {
		h.Logger().WriteLineString("acorn: " + err.Error())
	}
	select {}
}
