package main

import (
	"go.uber.org/fx"

	"github.com/you/tg-stickers/internal/app"
)

func main() {
	fx.New(app.Worker()).Run()
}
