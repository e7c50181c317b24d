package main

import (
	"context"

	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server"

	"github.com/rangerops/clubhouse-rbs/internal/ioc"
)

func main() {
	egoApp := ego.New()

	app := ioc.InitApp()
	app.TaskConsumer.Start(context.Background())

	if err := egoApp.Serve(func() server.Server {
		return app.WebServer
	}()).Run(); err != nil {
		elog.Panic("startup", elog.FieldErr(err))
	}
}
