package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	storage "github.com/practice-sem-2/employee-chat/internal/storages"
	usecase "github.com/practice-sem-2/employee-chat/internal/usecases"
	"github.com/practice-sem-2/employee-chat/migrations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const sampleSize = 3

func initLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		logger.WithField("log_level", level).Warning("specified invalid log level")
	} else {
		logger.SetLevel(logLevel)
	}
	return logger
}

func printRun(title string, run usecase.HiresRun) {
	fmt.Printf("%s: %d employees in %d ms\n", title, len(run.Employees), run.Elapsed.Milliseconds())
	for i, e := range run.Employees {
		if i == sampleSize {
			break
		}
		fmt.Printf("  #%d %s joined %s\n", e.ID, e.FullName, e.JoiningDate.Format("2006-01-02"))
	}
}

func main() {
	_ = godotenv.Load()
	viper.AutomaticEnv()
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("QUERY_TIMEOUT", 30*time.Second)
	viper.SetDefault("HIRES_WINDOW_MONTHS", 6)

	var logLevel string
	var months int
	var migrate bool

	flag.StringVar(&logLevel, "log", viper.GetString("LOG_LEVEL"), "log level")
	flag.IntVar(&months, "months", viper.GetInt("HIRES_WINDOW_MONTHS"), "how many months back a hire counts as recent")
	flag.BoolVar(&migrate, "migrate", viper.GetBool("AUTO_MIGRATE"), "apply database migrations before start")

	flag.Parse()

	logger := initLogger(logLevel)
	dsn := viper.GetString("DB_DSN")
	if dsn == "" {
		logger.Fatal("DB_DSN environment variable must be defined")
	}

	if migrate {
		if _, err := migrations.Up(migrations.DatabaseURL(dsn)); err != nil {
			logger.Fatalf("can't migrate database: %s", err.Error())
		}
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		logger.Fatalf("can't connect to database: %s", err.Error())
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("QUERY_TIMEOUT"))
	defer cancel()

	report, err := usecase.NewHiresBenchmark(storage.NewEmployeesStorage(db), months).Run(ctx)
	if err != nil {
		logger.WithError(err).Error("recent hires query failed")
		cancel()
		os.Exit(1)
	}

	fmt.Printf("Employees hired since %s\n", report.Since.Format("2006-01-02"))
	printRun("Blocking", report.Blocking)
	printRun("Concurrent", report.Concurrent)

	if report.DatabaseTimeErr != nil {
		logger.WithError(report.DatabaseTimeErr).Warn("can't read database time")
	} else {
		fmt.Printf("Database time: %s\n", report.DatabaseTime.Format(time.RFC3339))
	}
}
