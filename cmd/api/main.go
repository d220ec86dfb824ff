package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"Task_Mania/internal/config"
	"Task_Mania/internal/handler"
	"Task_Mania/internal/pkg"
	"Task_Mania/internal/pkg/log"
	mongorepo "Task_Mania/internal/repository/mongo"
	mysqlrepo "Task_Mania/internal/repository/mysql"
	redisrepo "Task_Mania/internal/repository/redis"
	"Task_Mania/internal/router"
	"Task_Mania/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err = log.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)
	pkg.ConfigureJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = mongorepo.Init(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout); err != nil {
		logrus.Fatalf("connect mongo: %v", err)
	}
	if err = mongorepo.EnsureIndexes(ctx, mongorepo.DB); err != nil {
		logrus.Fatalf("ensure mongo indexes: %v", err)
	}
	if err = mysqlrepo.InitDB(cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns, cfg.MySQL.MaxIdleConns); err != nil {
		logrus.Fatalf("connect mysql: %v", err)
	}
	if err = mysqlrepo.Migrate(mysqlrepo.DB); err != nil {
		logrus.Fatalf("migrate mysql: %v", err)
	}
	if err = redisrepo.Init(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logrus.Fatalf("connect redis: %v", err)
	}

	// stores
	communities := mongorepo.NewCommunityRepository(mongorepo.DB)
	posts := mongorepo.NewPostRepository(mongorepo.DB)
	comments := mongorepo.NewCommentRepository(mongorepo.DB)
	users := &mysqlrepo.UserRepository{DB: mysqlrepo.DB}
	follows := &mysqlrepo.FollowRepository{DB: mysqlrepo.DB}
	outbox := &mysqlrepo.OutboxRepository{DB: mysqlrepo.DB}
	counts := &mysqlrepo.FollowCountReconcilerRepo{DB: mysqlrepo.DB}
	tokens := &redisrepo.TokenRepository{RDB: redisrepo.Client}
	codes := &redisrepo.EmailRepository{RDB: redisrepo.Client}
	states := &redisrepo.OAuthStateRepository{RDB: redisrepo.Client}
	likeCache := redisrepo.NewLikeCacheRepository(redisrepo.Client)
	likeLock := &redisrepo.DistLock{RDB: redisrepo.Client}

	// services
	mailer := pkg.NewSMTPMailer(pkg.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	emailSvc := service.NewEmailService(codes, mailer)
	userSvc := service.NewUserService(users, tokens, emailSvc)
	oauthSvc := service.NewOAuthService(service.OAuthConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
	}, states, userSvc)
	communitySvc := service.NewCommunityService(communities, outbox)
	postSvc := service.NewPostService(posts, comments, communities, follows, likeCache)
	likeSvc := service.NewPostLikeService(posts, likeCache, likeLock)
	commentSvc := service.NewCommentService(comments, posts, users)
	followSvc := service.NewFollowService(follows, users)

	// background workers
	var sender service.Sender = service.LogSender
	var producer *pkg.KafkaProducer
	if cfg.Kafka.Enabled {
		producer = pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		sender = service.KafkaSender(producer)
	}
	relayer := service.NewOutboxRelayer(outbox, sender, cfg.Outbox.BatchSize, cfg.Outbox.Interval)
	reconciler := service.NewFollowCountReconciler(counts, cfg.Reconcile.BatchSize, cfg.Reconcile.Interval)
	go relayer.Run(ctx)
	go reconciler.Run(ctx)

	r := router.InitRouter(router.Handlers{
		User:      handler.NewUserHandler(userSvc),
		Email:     handler.NewEmailHandler(emailSvc),
		OAuth:     handler.NewOAuthHandler(oauthSvc, cfg.OAuth.SuccessURL),
		Community: handler.NewCommunityHandler(communitySvc),
		Post:      handler.NewPostHandler(postSvc),
		PostLike:  handler.NewPostLikeHandler(likeSvc),
		Comment:   handler.NewCommentHandler(commentSvc),
		Follow:    handler.NewFollowHandler(followSvc),
	}, tokens, cfg.Server.CORSOrigins)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logrus.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %v", err)
	}
	if err := producer.Close(); err != nil {
		logrus.Warnf("close kafka producer: %v", err)
	}
	if err := redisrepo.Close(); err != nil {
		logrus.Warnf("close redis: %v", err)
	}
	if err := mysqlrepo.Close(); err != nil {
		logrus.Warnf("close mysql: %v", err)
	}
	if err := mongorepo.Close(shutdownCtx); err != nil {
		logrus.Warnf("close mongo: %v", err)
	}
}
