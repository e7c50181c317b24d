package ioc

import (
	"fmt"

	"github.com/gotomicro/ego/server/egin"

	"github.com/rangerops/clubhouse-rbs/internal/api/web"
	"github.com/rangerops/clubhouse-rbs/internal/event/delivery"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/repository/cache"
	"github.com/rangerops/clubhouse-rbs/internal/repository/dao"
	"github.com/rangerops/clubhouse-rbs/internal/service/dispatch"
	"github.com/rangerops/clubhouse-rbs/internal/service/phone"
	"github.com/rangerops/clubhouse-rbs/internal/service/selector"
)

// App is the assembled engine: the HTTP surface plus the deferred-delivery
// consumer, wired against one shared set of repositories and gateways.
type App struct {
	WebServer    *egin.Component
	TaskConsumer *delivery.TaskConsumer
}

func InitApp() *App {
	db := InitDB()
	rdb := InitRedisClient()
	cfg := InitDispatchConfig()

	personRepo := repository.NewPersonRepository(dao.NewPersonDAO(db))
	alertRepo := repository.NewAlertRepository(dao.NewAlertDAO(db), cache.NewAlertCache(rdb))
	broadcastRepo := repository.NewBroadcastRepository(dao.NewBroadcastDAO(db))
	messageRepo := repository.NewMessageRepository(dao.NewBroadcastMessageDAO(db))

	smsClient := InitSMSClient(cfg)
	mailer := InitMailer(cfg)
	mailbox := InitMailbox(cfg, db)

	producer, err := delivery.NewTaskProducer(InitProducer())
	if err != nil {
		panic(fmt.Sprintf("init delivery producer: %v", err))
	}

	selectorSvc := selector.NewService(personRepo)
	phoneSvc := phone.NewService(personRepo, messageRepo, smsClient)
	dispatcher := dispatch.NewDispatcher(cfg, selectorSvc, alertRepo, broadcastRepo,
		messageRepo, smsClient, producer, InitIDGenerator())
	retrySvc := dispatch.NewRetryCoordinator(broadcastRepo, messageRepo, smsClient,
		mailer, mailbox, InitDistributedLock(rdb))

	consumer := delivery.NewTaskConsumer(InitConsumer(), mailer, mailbox, messageRepo)

	webServer := InitWebServer(
		web.NewBroadcastHandler(dispatcher, retrySvc, alertRepo, broadcastRepo, messageRepo),
		web.NewPhoneHandler(phoneSvc, personRepo),
	)

	return &App{
		WebServer:    webServer,
		TaskConsumer: consumer,
	}
}
