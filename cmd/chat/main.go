package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Shopify/sarama"
	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/practice-sem-2/employee-chat/internal/console"
	storage "github.com/practice-sem-2/employee-chat/internal/storages"
	usecase "github.com/practice-sem-2/employee-chat/internal/usecases"
	"github.com/practice-sem-2/employee-chat/migrations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func initConfig() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("LOG_LEVEL", "warn")
	viper.SetDefault("QUERY_TIMEOUT", 5*time.Second)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("LOGIN_ATTEMPTS_PER_MINUTE", 5)
	viper.SetDefault("UPDATES_TOPIC", "chat-updates")
	viper.SetDefault("AUTO_MIGRATE", false)
}

func initLogger(level string) *logrus.Logger {

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.WarnLevel)
		logger.
			WithField("log_level", level).
			Warning("specified invalid log level")
	} else {
		logger.SetLevel(logLevel)
		logger.
			WithField("log_level", level).
			Infof("specified %s log level", logLevel.String())
	}

	return logger
}

func initDB(dsn string, logger *logrus.Logger) *sqlx.DB {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		logger.Fatalf("can't connect to database: %s", err.Error())
	}

	db.SetMaxOpenConns(viper.GetInt("DB_MAX_OPEN_CONNS"))
	db.SetMaxIdleConns(viper.GetInt("DB_MAX_OPEN_CONNS"))
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info("successfully connected to database")
	return db
}

func initMigrations(dsn string, logger *logrus.Logger) {
	changed, err := migrations.Up(migrations.DatabaseURL(dsn))
	if err != nil {
		logger.Fatalf("can't migrate database: %s", err.Error())
	}
	logger.WithField("changed", changed).Info("database schema is up to date")
}

func initProducer(brokers string, logger *logrus.Logger) sarama.SyncProducer {
	addrs := strings.Split(brokers, ",")
	config := sarama.NewConfig()
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Timeout = 10 * time.Second
	config.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(addrs, config)

	if err != nil {
		logger.WithError(err).Fatalf("can't create producer")
	}

	return producer
}

func main() {
	initConfig()

	var logLevel string
	var migrate bool

	flag.StringVar(&logLevel, "log", viper.GetString("LOG_LEVEL"), "log level")
	flag.BoolVar(&migrate, "migrate", viper.GetBool("AUTO_MIGRATE"), "apply database migrations before start")

	flag.Parse()

	logger := initLogger(logLevel)

	dsn := viper.GetString("DB_DSN")
	if dsn == "" {
		logger.Fatal("DB_DSN environment variable must be defined")
	}

	if migrate {
		initMigrations(dsn, logger)
	}

	db := initDB(dsn, logger)
	defer func(db *sqlx.DB) {
		err := db.Close()
		if err != nil {
			logger.Errorf("during db connection close an error occurred: %s", err.Error())
		}
	}(db)

	var updates storage.UpdatesStore = storage.NopUpdatesStore{}
	if brokers := viper.GetString("KAFKA_BROKERS"); brokers != "" {
		producer := initProducer(brokers, logger)
		defer producer.Close()
		updates = storage.NewUpdatesStore(producer, &storage.UpdatesStoreConfig{
			UpdatesTopic: viper.GetString("UPDATES_TOPIC"),
		})
	}

	store := storage.NewRegistry(db, updates)
	validate := validator.New()
	limiter := usecase.NewLoginLimiter(viper.GetInt("LOGIN_ATTEMPTS_PER_MINUTE"), 0)

	app := console.NewConsole(
		os.Stdin,
		os.Stdout,
		usecase.NewUsersUsecase(store, validate, limiter, logger),
		usecase.NewChatsUsecase(store, validate, logger),
		usecase.NewMessagesUsecase(store, validate, logger),
		console.Config{
			QueryTimeout: viper.GetDuration("QUERY_TIMEOUT"),
			Color:        !color.NoColor,
		},
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		select {
		case sig := <-osSignal:
			logger.Infof("%s caught. Shutting down", sig.String())
			cancel()
			// Run is blocked reading stdin; closing it ends the loop.
			_ = os.Stdin.Close()
		case <-ctx.Done():
			return
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Errorf("console stopped: %s", err.Error())
	}
}
