package ioc

import (
	"github.com/gotomicro/ego/server/egin"

	"github.com/rangerops/clubhouse-rbs/internal/api/web"
)

func InitWebServer(broadcast *web.BroadcastHandler, phone *web.PhoneHandler) *egin.Component {
	server := egin.Load("server.http").Build()
	broadcast.RegisterRoutes(server)
	phone.RegisterRoutes(server)
	return server
}
